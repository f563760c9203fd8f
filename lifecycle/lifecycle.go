// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/metrics"
	"github.com/danielhkuo/closed-ballot/models"
)

// Store is the persistence the lifecycle needs.
type Store interface {
	GetElection(ctx context.Context, id string) (models.Election, error)
	ListOpenElections(ctx context.Context) ([]models.Election, error)
	UpdateElectionStatus(ctx context.Context, id string, status models.ElectionStatus, at time.Time) (bool, error)
	CompleteElection(ctx context.Context, id string, startTime, endTime time.Time) (bool, error)
}

// DeriveStatus computes the status implied by the time window.
// The end instant itself still counts as ONGOING.
func DeriveStatus(now, start, end time.Time) models.ElectionStatus {
	switch {
	case now.Before(start):
		return models.StatusUpcoming
	case !now.After(end):
		return models.StatusOngoing
	default:
		return models.StatusCompleted
	}
}

// Effective returns the status an election has at now. COMPLETED is
// terminal and wins over the window.
func Effective(e models.Election, now time.Time) models.ElectionStatus {
	if e.Status == models.StatusCompleted {
		return models.StatusCompleted
	}
	return DeriveStatus(now, e.StartTime, e.EndTime)
}

// CountByStatus tallies elections by their effective status at now.
func CountByStatus(elections []models.Election, now time.Time) models.StatusCounts {
	var counts models.StatusCounts
	for _, e := range elections {
		switch Effective(e, now) {
		case models.StatusUpcoming:
			counts.Upcoming++
		case models.StatusOngoing:
			counts.Ongoing++
		case models.StatusCompleted:
			counts.Completed++
		}
	}
	return counts
}

// StatusUpdate is one status change planned by a sweep.
type StatusUpdate struct {
	ElectionID string
	From       models.ElectionStatus
	To         models.ElectionStatus
}

// Plan returns the updates needed to bring elections in line with now.
// It is pure; every election is judged against the same instant.
func Plan(now time.Time, elections []models.Election) []StatusUpdate {
	var updates []StatusUpdate
	for _, e := range elections {
		if e.Status == models.StatusCompleted {
			continue
		}
		derived := DeriveStatus(now, e.StartTime, e.EndTime)
		if derived != e.Status {
			updates = append(updates, StatusUpdate{ElectionID: e.ID, From: e.Status, To: derived})
		}
	}
	return updates
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	Checked int
	Updated int
	Failed  int
}

type Service struct {
	store   Store
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(st Store, clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, clock: clk, metrics: m, logger: logger}
}

// Sweep recomputes the status of every non-terminal election. A failed
// update is logged and skipped; the next sweep retries it.
func (s *Service) Sweep(ctx context.Context) (SweepReport, error) {
	const op = "lifecycle.Sweep"
	started := time.Now()
	defer func() { s.metrics.ObserveSweep(time.Since(started)) }()

	now := s.clock.Now()

	elections, err := s.store.ListOpenElections(ctx)
	if err != nil {
		s.logger.Error("failed to list elections for sweep", "error", err)
		return SweepReport{}, apperr.Unexpected(op, err)
	}

	report := SweepReport{Checked: len(elections)}
	for _, u := range Plan(now, elections) {
		changed, err := s.store.UpdateElectionStatus(ctx, u.ElectionID, u.To, now)
		if err != nil {
			report.Failed++
			s.metrics.SweepFailure()
			s.logger.Warn("failed to update election status",
				"election_id", u.ElectionID,
				"from", u.From,
				"to", u.To,
				"error", err,
			)
			continue
		}
		if !changed {
			// Completed concurrently by an explicit end
			continue
		}
		report.Updated++
		s.metrics.StatusTransition(u.To)
		s.logger.Info("election status changed", "election_id", u.ElectionID, "from", u.From, "to", u.To)
	}

	s.logger.Info("election sweep finished",
		"checked", report.Checked,
		"updated", report.Updated,
		"failed", report.Failed,
	)
	return report, nil
}

// EndNow completes an election immediately with end_time = now. An election
// that has not started by now gets start_time one second earlier, keeping
// start_time < end_time at the stored second precision.
// Ending an already COMPLETED election fails with ELECTION_NOT_ACTIVE.
func (s *Service) EndNow(ctx context.Context, electionID string) (models.Election, error) {
	const op = "lifecycle.EndNow"

	e, err := s.store.GetElection(ctx, electionID)
	if err != nil {
		return models.Election{}, err
	}
	if e.Status == models.StatusCompleted {
		return models.Election{}, apperr.Errorf(apperr.KindElectionNotActive, op, "election %s already completed", electionID)
	}

	now := s.clock.Now()
	start := e.StartTime
	if !start.Before(now) {
		start = now.Add(-time.Second)
	}

	changed, err := s.store.CompleteElection(ctx, electionID, start, now)
	if err != nil {
		s.logger.Error("failed to end election", "election_id", electionID, "error", err)
		return models.Election{}, apperr.Unexpected(op, err)
	}
	if !changed {
		return models.Election{}, apperr.Errorf(apperr.KindElectionNotActive, op, "election %s already completed", electionID)
	}

	s.metrics.StatusTransition(models.StatusCompleted)
	s.logger.Info("election ended", "election_id", electionID, "from", e.Status)

	e.Status = models.StatusCompleted
	e.StartTime = start
	e.EndTime = now
	e.UpdatedAt = &now
	return e, nil
}
