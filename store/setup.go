// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/models"
)

func (s *SQLStore) CreatePosition(ctx context.Context, p models.Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO position (id, election_id, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.ElectionID, p.Title, p.Description, p.CreatedAt.UTC())
	return classify("store.CreatePosition", err)
}

// GetPosition returns the position only if it belongs to electionID.
func (s *SQLStore) GetPosition(ctx context.Context, electionID, positionID string) (models.Position, error) {
	var p models.Position
	err := s.db.QueryRowContext(ctx, `
		SELECT id, election_id, title, description, created_at
		FROM position
		WHERE id = $1 AND election_id = $2
	`, positionID, electionID).Scan(&p.ID, &p.ElectionID, &p.Title, &p.Description, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Position{}, apperr.Errorf(apperr.KindInvalidInput, "store.GetPosition",
			"position %s does not belong to election %s", positionID, electionID)
	}
	if err != nil {
		return models.Position{}, apperr.Unexpected("store.GetPosition", err)
	}
	return p, nil
}

// ListPositions returns an election's positions in creation order.
func (s *SQLStore) ListPositions(ctx context.Context, electionID string) ([]models.Position, error) {
	const op = "store.ListPositions"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, title, description, created_at
		FROM position
		WHERE election_id = $1
		ORDER BY created_at, id
	`, electionID)
	if err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.ElectionID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			return nil, apperr.Unexpected(op, err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	return positions, nil
}

func (s *SQLStore) CreateCandidate(ctx context.Context, c models.Candidate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidate (id, position_id, name, bio, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.PositionID, c.Name, c.Bio, c.Image, c.CreatedAt.UTC())
	return classify("store.CreateCandidate", err)
}

// ListCandidatesByPositions returns the candidates of the given positions in
// creation order.
func (s *SQLStore) ListCandidatesByPositions(ctx context.Context, positionIDs []string) ([]models.Candidate, error) {
	const op = "store.ListCandidatesByPositions"

	candidates := []models.Candidate{}
	if len(positionIDs) == 0 {
		return candidates, nil
	}

	params := make([]string, len(positionIDs))
	args := make([]any, len(positionIDs))
	for i, id := range positionIDs {
		params[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position_id, name, bio, image, created_at
		FROM candidate
		WHERE position_id IN (`+strings.Join(params, ", ")+`)
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.PositionID, &c.Name, &c.Bio, &c.Image, &c.CreatedAt); err != nil {
			return nil, apperr.Unexpected(op, err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	return candidates, nil
}
