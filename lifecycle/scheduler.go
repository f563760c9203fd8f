// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aptible/supercronic/cronexpr"
)

// Sweeper runs one status sweep.
type Sweeper interface {
	Sweep(ctx context.Context) (SweepReport, error)
}

// Scheduler triggers a Sweeper on a cron schedule. It sweeps once on start,
// then at every schedule tick until its context is cancelled.
type Scheduler struct {
	expr    *cronexpr.Expression
	sweeper Sweeper
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewScheduler(schedule string, sw Sweeper, logger *slog.Logger) (*Scheduler, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{expr: expr, sweeper: sw, logger: logger}, nil
}

// Start launches the scheduling goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Wait blocks until the scheduling goroutine has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.sweep(ctx)

	for {
		next := s.expr.Next(time.Now())
		if next.IsZero() {
			s.logger.Warn("sweep schedule has no future runs, stopping")
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Error("election sweep failed", "error", err)
	}
}
