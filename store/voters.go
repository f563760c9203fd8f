// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/models"
)

const voterColumns = 5

// maxBindParams is the lower of the per-statement bind parameter limits of
// the supported drivers (sqlite 32766, postgres 65535).
const maxBindParams = 32766

// maxVotersPerStatement is how many voter rows fit in one INSERT.
const maxVotersPerStatement = maxBindParams / voterColumns

// InsertVoters inserts the batch in one transaction, split into as few
// statements as the bind parameter limit allows. A collision on
// (election_id, code) fails the whole batch with DUPLICATE_ENTRY.
func (s *SQLStore) InsertVoters(ctx context.Context, voters []models.Voter) error {
	const op = "store.InsertVoters"

	if len(voters) == 0 {
		return nil
	}
	if len(voters) <= maxVotersPerStatement {
		return classify(op, insertVoters(ctx, s.db, voters))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unexpected(op, err)
	}
	defer tx.Rollback()

	for start := 0; start < len(voters); start += maxVotersPerStatement {
		end := min(start+maxVotersPerStatement, len(voters))
		if err := insertVoters(ctx, tx, voters[start:end]); err != nil {
			return classify(op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(op, err)
	}
	return nil
}

func insertVoters(ctx context.Context, q querier, voters []models.Voter) error {
	args := make([]any, 0, len(voters)*voterColumns)
	for _, v := range voters {
		args = append(args, v.ID, v.ElectionID, v.Code, v.Status, v.VotedAt)
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO voter (id, election_id, code, status, voted_at)
		VALUES `+placeholders(len(voters), voterColumns), args...)
	return err
}

func (s *SQLStore) GetVoterByCode(ctx context.Context, electionID, code string) (models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, election_id, code, status, voted_at
		FROM voter
		WHERE election_id = $1 AND code = $2
	`, electionID, code).Scan(&v.ID, &v.ElectionID, &v.Code, &v.Status, &v.VotedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, apperr.E(apperr.KindVoterNotFound, "store.GetVoterByCode", nil)
	}
	if err != nil {
		return models.Voter{}, apperr.Unexpected("store.GetVoterByCode", err)
	}
	return v, nil
}

func (s *SQLStore) ListVoters(ctx context.Context, electionID string) ([]models.Voter, error) {
	const op = "store.ListVoters"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, code, status, voted_at
		FROM voter
		WHERE election_id = $1
		ORDER BY code
	`, electionID)
	if err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		var v models.Voter
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.Code, &v.Status, &v.VotedAt); err != nil {
			return nil, apperr.Unexpected(op, err)
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	return voters, nil
}

// CountVoters returns the number of issued codes and how many were spent.
func (s *SQLStore) CountVoters(ctx context.Context, electionID string) (total, voted int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0)
		FROM voter
		WHERE election_id = $1
	`, electionID, models.VoterVoted).Scan(&total, &voted)
	if err != nil {
		return 0, 0, apperr.Unexpected("store.CountVoters", err)
	}
	return total, voted, nil
}

// markVoted flips NOT_VOTED -> VOTED. The affected row count is the only
// signal that this caller won the transition.
func markVoted(ctx context.Context, q querier, voterID string, at time.Time) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE voter
		SET status = $1, voted_at = $2
		WHERE id = $3 AND status = $4
	`, models.VoterVoted, at.UTC(), voterID, models.VoterNotVoted)
	if err != nil {
		return false, apperr.Unexpected("store.markVoted", err)
	}
	return affected(res, "store.markVoted")
}
