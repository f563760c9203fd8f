// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/lifecycle"
	"github.com/danielhkuo/closed-ballot/models"
)

// Store is the persistence the aggregator reads from.
type Store interface {
	GetElection(ctx context.Context, id string) (models.Election, error)
	ListPositions(ctx context.Context, electionID string) ([]models.Position, error)
	ListCandidatesByPositions(ctx context.Context, positionIDs []string) ([]models.Candidate, error)
	ListVotes(ctx context.Context, electionID string) ([]models.Vote, error)
	CountVoters(ctx context.Context, electionID string) (total, voted int, err error)
}

type Aggregator struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

func NewAggregator(st Store, clk clock.Clock, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{store: st, clock: clk, logger: logger}
}

// Compute tallies the election from the current ledger. Nothing is cached;
// two calls with no votes in between return the same results.
func (a *Aggregator) Compute(ctx context.Context, electionID string) (models.ElectionResults, error) {
	const op = "results.Compute"

	election, err := a.store.GetElection(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, err
	}
	election.Status = lifecycle.Effective(election, a.clock.Now())

	positions, err := a.store.ListPositions(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, a.fail(op, electionID, err)
	}
	ids := make([]string, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	candidates, err := a.store.ListCandidatesByPositions(ctx, ids)
	if err != nil {
		return models.ElectionResults{}, a.fail(op, electionID, err)
	}
	votes, err := a.store.ListVotes(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, a.fail(op, electionID, err)
	}
	totalVoters, voted, err := a.store.CountVoters(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, a.fail(op, electionID, err)
	}

	return models.ElectionResults{
		Election:       election,
		TotalVoters:    totalVoters,
		TotalVotesCast: voted,
		Positions:      Tally(positions, candidates, votes),
	}, nil
}

func (a *Aggregator) fail(op, electionID string, err error) error {
	a.logger.Error("failed to compute results", "election_id", electionID, "error", err)
	return apperr.Unexpected(op, err)
}

type tallyKey struct {
	position  string
	candidate string
}

// Tally counts votes per position and candidate. Candidates come back
// ordered by votes descending; ties keep the order candidates were given in,
// which is creation order when read from the store.
func Tally(positions []models.Position, candidates []models.Candidate, votes []models.Vote) []models.PositionResult {
	perPosition := make(map[string]int, len(positions))
	perCandidate := make(map[tallyKey]int, len(candidates))
	for _, v := range votes {
		perPosition[v.PositionID]++
		perCandidate[tallyKey{v.PositionID, v.CandidateID}]++
	}

	byPosition := make(map[string][]models.Candidate, len(positions))
	for _, c := range candidates {
		byPosition[c.PositionID] = append(byPosition[c.PositionID], c)
	}

	out := make([]models.PositionResult, 0, len(positions))
	for _, p := range positions {
		total := perPosition[p.ID]

		rows := make([]models.CandidateResult, 0, len(byPosition[p.ID]))
		for _, c := range byPosition[p.ID] {
			n := perCandidate[tallyKey{p.ID, c.ID}]
			rows = append(rows, models.CandidateResult{
				Candidate:  c,
				Votes:      n,
				Percentage: percentage(n, total),
			})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Votes > rows[j].Votes
		})

		out = append(out, models.PositionResult{
			Position:   p,
			TotalVotes: total,
			Candidates: rows,
		})
	}
	return out
}

// percentage is votes/total*100 rounded to two decimals, 0 when total is 0.
func percentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*10000) / 100
}
