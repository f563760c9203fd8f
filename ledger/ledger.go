// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/auth"
	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/lifecycle"
	"github.com/danielhkuo/closed-ballot/metrics"
	"github.com/danielhkuo/closed-ballot/models"
)

// Store is the persistence the ledger needs.
type Store interface {
	GetElection(ctx context.Context, id string) (models.Election, error)
	GetVoterByCode(ctx context.Context, electionID, code string) (models.Voter, error)
	ListPositions(ctx context.Context, electionID string) ([]models.Position, error)
	ListCandidatesByPositions(ctx context.Context, positionIDs []string) ([]models.Candidate, error)
	CastBallot(ctx context.Context, voterID string, votes []models.Vote, votedAt time.Time) error
}

// Receipt describes an accepted ballot.
type Receipt struct {
	VoterID       string
	VotesRecorded int
	VotedAt       time.Time
}

// Session is a verified voter together with the election they may vote in.
type Session struct {
	Election models.Election
	Voter    models.Voter
}

// Ledger records ballots, at most once per voter.
type Ledger struct {
	store   Store
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(st Store, clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: st, clock: clk, metrics: m, logger: logger}
}

// SignIn verifies a voter code for an ONGOING election.
func (l *Ledger) SignIn(ctx context.Context, electionID, code string) (Session, error) {
	election, voter, err := l.resolve(ctx, "ledger.SignIn", electionID, code)
	if err != nil {
		return Session{}, err
	}
	return Session{Election: election, Voter: voter}, nil
}

// Submit records one ballot for the voter holding code.
//
// The voter's NOT_VOTED -> VOTED transition and the vote inserts commit
// together, and the transition is a conditional update that only one
// submission can win. A voter who already voted gets VOTER_ALREADY_VOTED
// and nothing is written.
func (l *Ledger) Submit(ctx context.Context, electionID, code string, choices []models.Choice) (Receipt, error) {
	const op = "ledger.Submit"

	receipt, err := l.submit(ctx, op, electionID, code, choices)
	l.metrics.BallotOutcome(outcome(err))
	return receipt, err
}

func (l *Ledger) submit(ctx context.Context, op, electionID, code string, choices []models.Choice) (Receipt, error) {
	_, voter, err := l.resolve(ctx, op, electionID, code)
	if err != nil {
		return Receipt{}, err
	}

	if err := l.validate(ctx, op, electionID, choices); err != nil {
		return Receipt{}, err
	}

	votedAt := l.clock.Now()
	votes := make([]models.Vote, 0, len(choices))
	for _, c := range choices {
		votes = append(votes, models.Vote{
			ID:          uuid.NewString(),
			ElectionID:  electionID,
			PositionID:  c.PositionID,
			CandidateID: c.CandidateID,
			VoterID:     voter.ID,
			CreatedAt:   votedAt,
		})
	}

	err = l.store.CastBallot(ctx, voter.ID, votes, votedAt)
	switch {
	case err == nil:
	case apperr.Is(err, apperr.KindVoterAlreadyVoted):
		l.logger.Info("concurrent ballot rejected", "election_id", electionID, "voter_id", voter.ID)
		return Receipt{}, err
	case apperr.Is(err, apperr.KindDuplicateEntry):
		// The voter transition was won, so a vote collision means a stale
		// or corrupted ledger rather than a user error.
		l.logger.Error("vote insert collided after voter transition",
			"op", op,
			"election_id", electionID,
			"voter_id", voter.ID,
			"error", err,
		)
		return Receipt{}, apperr.E(apperr.KindUnexpected, op, err)
	default:
		l.logger.Error("failed to cast ballot",
			"op", op,
			"election_id", electionID,
			"voter_id", voter.ID,
			"error", err,
		)
		return Receipt{}, apperr.Unexpected(op, err)
	}

	l.logger.Info("ballot submitted", "election_id", electionID, "voter_id", voter.ID, "votes", len(votes))
	return Receipt{VoterID: voter.ID, VotesRecorded: len(votes), VotedAt: votedAt}, nil
}

// resolve loads the election and voter and checks both are usable now.
func (l *Ledger) resolve(ctx context.Context, op, electionID, code string) (models.Election, models.Voter, error) {
	election, err := l.store.GetElection(ctx, electionID)
	if err != nil {
		return models.Election{}, models.Voter{}, err
	}

	status := lifecycle.Effective(election, l.clock.Now())
	if status != models.StatusOngoing {
		return models.Election{}, models.Voter{}, apperr.Errorf(apperr.KindElectionNotActive, op,
			"election %s is %s", electionID, status)
	}
	election.Status = status

	code = auth.NormalizeCode(code)
	if code == "" {
		return models.Election{}, models.Voter{}, apperr.E(apperr.KindVoterNotFound, op, nil)
	}
	voter, err := l.store.GetVoterByCode(ctx, electionID, code)
	if err != nil {
		return models.Election{}, models.Voter{}, err
	}
	if voter.Status == models.VoterVoted {
		return models.Election{}, models.Voter{}, apperr.E(apperr.KindVoterAlreadyVoted, op, nil)
	}
	return election, voter, nil
}

// validate checks every choice names a position of the election, a
// candidate under that position, and that no position repeats.
func (l *Ledger) validate(ctx context.Context, op, electionID string, choices []models.Choice) error {
	if len(choices) == 0 {
		return apperr.Errorf(apperr.KindInvalidInput, op, "ballot has no choices")
	}

	positions, err := l.store.ListPositions(ctx, electionID)
	if err != nil {
		return apperr.Unexpected(op, err)
	}
	ids := make([]string, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	candidates, err := l.store.ListCandidatesByPositions(ctx, ids)
	if err != nil {
		return apperr.Unexpected(op, err)
	}

	candidatePosition := make(map[string]string, len(candidates))
	for _, c := range candidates {
		candidatePosition[c.ID] = c.PositionID
	}
	inElection := make(map[string]bool, len(ids))
	for _, id := range ids {
		inElection[id] = true
	}

	seen := make(map[string]bool, len(choices))
	for _, c := range choices {
		if !inElection[c.PositionID] {
			return apperr.Errorf(apperr.KindInvalidInput, op, "position %s is not part of this election", c.PositionID)
		}
		if seen[c.PositionID] {
			return apperr.Errorf(apperr.KindInvalidInput, op, "position %s chosen more than once", c.PositionID)
		}
		seen[c.PositionID] = true
		if candidatePosition[c.CandidateID] != c.PositionID {
			return apperr.Errorf(apperr.KindInvalidInput, op, "candidate %s does not stand for position %s", c.CandidateID, c.PositionID)
		}
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.BallotAccepted
	}
	switch apperr.KindOf(err) {
	case apperr.KindVoterAlreadyVoted:
		return metrics.BallotAlreadyVoted
	case apperr.KindUnexpected, apperr.KindDuplicateEntry:
		return metrics.BallotError
	default:
		return metrics.BallotRejected
	}
}
