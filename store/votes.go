// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"time"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/models"
)

const voteColumns = 6

func insertVotes(ctx context.Context, q querier, votes []models.Vote) error {
	if len(votes) == 0 {
		return nil
	}

	args := make([]any, 0, len(votes)*voteColumns)
	for _, v := range votes {
		args = append(args, v.ID, v.ElectionID, v.PositionID, v.CandidateID, v.VoterID, v.CreatedAt.UTC())
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO vote (id, election_id, position_id, candidate_id, voter_id, created_at)
		VALUES `+placeholders(len(votes), voteColumns), args...)
	return classify("store.InsertVotes", err)
}

// InsertVotes inserts the votes as one statement. A collision on
// (position_id, voter_id) is reported as DUPLICATE_ENTRY.
func (s *SQLStore) InsertVotes(ctx context.Context, votes []models.Vote) error {
	return insertVotes(ctx, s.db, votes)
}

// CastBallot marks the voter VOTED and inserts the ballot's votes in one
// transaction. The conditional status update runs first; when it matches no
// row the voter has already voted and nothing is written.
func (s *SQLStore) CastBallot(ctx context.Context, voterID string, votes []models.Vote, votedAt time.Time) error {
	const op = "store.CastBallot"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unexpected(op, err)
	}
	defer tx.Rollback()

	won, err := markVoted(ctx, tx, voterID, votedAt)
	if err != nil {
		return err
	}
	if !won {
		return apperr.E(apperr.KindVoterAlreadyVoted, op, nil)
	}

	if err := insertVotes(ctx, tx, votes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Unexpected(op, err)
	}
	return nil
}

// ListVotes returns every vote recorded for the election.
func (s *SQLStore) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	const op = "store.ListVotes"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, position_id, candidate_id, voter_id, created_at
		FROM vote
		WHERE election_id = $1
	`, electionID)
	if err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.PositionID, &v.CandidateID, &v.VoterID, &v.CreatedAt); err != nil {
			return nil, apperr.Unexpected(op, err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(op, err)
	}
	return votes, nil
}
