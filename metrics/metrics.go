// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielhkuo/closed-ballot/models"
)

// Ballot outcome label values
const (
	BallotAccepted     = "accepted"
	BallotAlreadyVoted = "already_voted"
	BallotRejected     = "rejected"
	BallotError        = "error"
)

// Metrics holds the Prometheus collectors for the election core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ballots        *prometheus.CounterVec
	codesIssued    prometheus.Counter
	codeCollisions prometheus.Counter
	transitions    *prometheus.CounterVec
	sweepFailures  prometheus.Counter
	sweepDuration  prometheus.Histogram
}

// New creates the collectors and registers them with registry.
// A nil registry leaves them unregistered.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		ballots: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ballot_submissions_total",
			Help: "Ballot submissions by outcome",
		}, []string{"outcome"}),
		codesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_voter_codes_issued_total",
			Help: "Total number of voter codes persisted",
		}),
		codeCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_voter_code_batch_collisions_total",
			Help: "Voter code batches discarded because a code already existed",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ballot_election_status_transitions_total",
			Help: "Election status changes applied by the lifecycle sweep",
		}, []string{"status"}),
		sweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_election_sweep_failures_total",
			Help: "Per-election status updates that failed during a sweep",
		}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballot_election_sweep_duration_seconds",
			Help:    "Duration of lifecycle sweeps",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) BallotOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ballots.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CodesIssued(n int) {
	if m == nil {
		return
	}
	m.codesIssued.Add(float64(n))
}

func (m *Metrics) CodeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func (m *Metrics) StatusTransition(to models.ElectionStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}

func (m *Metrics) SweepFailure() {
	if m == nil {
		return
	}
	m.sweepFailures.Inc()
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}
