// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voters

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/auth"
	"github.com/danielhkuo/closed-ballot/metrics"
	"github.com/danielhkuo/closed-ballot/models"
)

const (
	DefaultCodeLength  = 7
	DefaultBatchSize   = 100
	DefaultMaxAttempts = 5

	// drawsPerCode bounds how many raw draws a batch may take before the
	// attempt is abandoned. Only reachable when the code space is nearly full.
	drawsPerCode = 20
)

var errCodeSpaceExhausted = errors.New("could not draw enough distinct codes")

// Store is the persistence the issuer needs.
type Store interface {
	GetElection(ctx context.Context, id string) (models.Election, error)
	InsertVoters(ctx context.Context, voters []models.Voter) error
}

// Options tunes code generation. Zero fields take the defaults.
type Options struct {
	Alphabet    string
	CodeLength  int
	BatchSize   int
	MaxAttempts int
}

func (o Options) withDefaults() Options {
	if o.Alphabet == "" {
		o.Alphabet = auth.CodeAlphabet
	}
	if o.CodeLength < 1 {
		o.CodeLength = DefaultCodeLength
	}
	if o.BatchSize < 1 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// Issuer hands out voter codes for an election.
type Issuer struct {
	store   Store
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewIssuer(st Store, opts Options, m *metrics.Metrics, logger *slog.Logger) *Issuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Issuer{store: st, opts: opts.withDefaults(), metrics: m, logger: logger}
}

// Generate creates n voters with codes unique within the election.
//
// Codes are inserted batch by batch. A batch that collides with existing
// codes is discarded and redrawn, up to MaxAttempts times. When a batch runs
// out of attempts Generate stops with UNEXPECTED and returns the voters
// already committed by earlier batches alongside the error; those are not
// rolled back.
func (i *Issuer) Generate(ctx context.Context, electionID string, n int) ([]models.Voter, error) {
	const op = "voters.Generate"

	if n < 1 {
		return nil, apperr.Errorf(apperr.KindInvalidInput, op, "count must be at least 1, got %d", n)
	}
	if _, err := i.store.GetElection(ctx, electionID); err != nil {
		return nil, err
	}

	issued := make([]models.Voter, 0, n)
	for len(issued) < n {
		size := min(i.opts.BatchSize, n-len(issued))

		batch, err := i.insertBatch(ctx, electionID, size)
		if err != nil {
			i.logger.Error("failed to issue voter codes",
				"election_id", electionID,
				"requested", n,
				"issued", len(issued),
				"error", err,
			)
			return issued, apperr.E(apperr.KindUnexpected, op, err)
		}

		issued = append(issued, batch...)
		i.metrics.CodesIssued(len(batch))
	}

	i.logger.Info("voter codes issued", "election_id", electionID, "count", len(issued))
	return issued, nil
}

// insertBatch draws and persists one batch, redrawing on collision.
func (i *Issuer) insertBatch(ctx context.Context, electionID string, size int) ([]models.Voter, error) {
	var lastErr error
	for attempt := 1; attempt <= i.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		codes, err := i.drawCodes(size)
		if err != nil {
			// Nothing reached the store.
			lastErr = err
			i.logger.Debug("voter code draw exhausted, retrying",
				"election_id", electionID,
				"attempt", attempt,
				"size", size,
			)
			continue
		}

		batch := make([]models.Voter, 0, size)
		for _, code := range codes {
			batch = append(batch, models.Voter{
				ID:         uuid.NewString(),
				ElectionID: electionID,
				Code:       code,
				Status:     models.VoterNotVoted,
			})
		}

		err = i.store.InsertVoters(ctx, batch)
		if err == nil {
			return batch, nil
		}
		if !apperr.Is(err, apperr.KindDuplicateEntry) {
			return nil, err
		}

		lastErr = err
		i.metrics.CodeCollision()
		i.logger.Debug("voter code batch collided, redrawing",
			"election_id", electionID,
			"attempt", attempt,
			"size", size,
		)
	}
	return nil, lastErr
}

// drawCodes returns size distinct codes in draw order.
func (i *Issuer) drawCodes(size int) ([]string, error) {
	seen := make(map[string]struct{}, size)
	codes := make([]string, 0, size)
	for draws := 0; len(codes) < size; draws++ {
		if draws >= size*drawsPerCode {
			return nil, errCodeSpaceExhausted
		}
		code, err := auth.GenerateVoterCode(i.opts.Alphabet, i.opts.CodeLength)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}
