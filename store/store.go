// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/models"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore persists elections, setup records, voters, and votes.
// It relies on the schema's unique constraints for (election_id, code)
// and (position_id, voter_id).
type SQLStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const electionColumns = `id, title, description, start_time, end_time, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElection(row rowScanner) (models.Election, error) {
	var e models.Election
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
		&e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (s *SQLStore) CreateElection(ctx context.Context, e models.Election) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO election (id, title, description, start_time, end_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Title, e.Description, e.StartTime.UTC(), e.EndTime.UTC(), e.Status, e.CreatedAt.UTC())
	return classify("store.CreateElection", err)
}

func (s *SQLStore) GetElection(ctx context.Context, id string) (models.Election, error) {
	e, err := scanElection(s.db.QueryRowContext(ctx, `
		SELECT `+electionColumns+`
		FROM election
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, apperr.E(apperr.KindElectionNotFound, "store.GetElection", nil)
	}
	if err != nil {
		return models.Election{}, apperr.Unexpected("store.GetElection", err)
	}
	return e, nil
}

// ListElections returns all elections, newest first.
func (s *SQLStore) ListElections(ctx context.Context) ([]models.Election, error) {
	return s.listElections(ctx, "store.ListElections", `
		SELECT `+electionColumns+`
		FROM election
		ORDER BY created_at DESC, id
	`)
}

// ListOpenElections returns elections whose status is not yet COMPLETED.
func (s *SQLStore) ListOpenElections(ctx context.Context) ([]models.Election, error) {
	return s.listElections(ctx, "store.ListOpenElections", `
		SELECT `+electionColumns+`
		FROM election
		WHERE status <> $1
		ORDER BY start_time, id
	`, models.StatusCompleted)
}

func (s *SQLStore) listElections(ctx context.Context, op, query string, args ...any) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, apperr.Unexpected(op, err)
		}
		elections = append(elections, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	return elections, nil
}

// UpdateElectionStatus overwrites the status of a non-terminal election.
// It reports false when the row is missing or already COMPLETED.
func (s *SQLStore) UpdateElectionStatus(ctx context.Context, id string, status models.ElectionStatus, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE election
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status <> $4
	`, status, at.UTC(), id, models.StatusCompleted)
	if err != nil {
		return false, apperr.Unexpected("store.UpdateElectionStatus", err)
	}
	return affected(res, "store.UpdateElectionStatus")
}

// CompleteElection moves a non-terminal election to COMPLETED and rewrites
// its time window. It reports false when the election is already COMPLETED
// or missing.
func (s *SQLStore) CompleteElection(ctx context.Context, id string, startTime, endTime time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE election
		SET status = $1, start_time = $2, end_time = $3, updated_at = $3
		WHERE id = $4 AND status <> $1
	`, models.StatusCompleted, startTime.UTC(), endTime.UTC(), id)
	if err != nil {
		return false, apperr.Unexpected("store.CompleteElection", err)
	}
	return affected(res, "store.CompleteElection")
}

// DeleteElection removes an election; positions, candidates, voters and
// votes go with it through ON DELETE CASCADE.
func (s *SQLStore) DeleteElection(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM election WHERE id = $1`, id)
	if err != nil {
		return apperr.Unexpected("store.DeleteElection", err)
	}
	ok, err := affected(res, "store.DeleteElection")
	if err != nil {
		return err
	}
	if !ok {
		return apperr.E(apperr.KindElectionNotFound, "store.DeleteElection", nil)
	}
	return nil
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Unexpected(op, err)
	}
	return n > 0, nil
}

// placeholders returns "($1, $2, ...), (...)" for rows*cols parameters.
func placeholders(rows, cols int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}
