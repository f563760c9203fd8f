// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/models"
	"github.com/danielhkuo/closed-ballot/store"
	"github.com/danielhkuo/closed-ballot/testutil"
)

func TestDeriveStatus(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want models.ElectionStatus
	}{
		{"before start", start.Add(-time.Second), models.StatusUpcoming},
		{"at start", start, models.StatusOngoing},
		{"mid window", start.Add(4 * time.Hour), models.StatusOngoing},
		{"at end", end, models.StatusOngoing},
		{"after end", end.Add(time.Nanosecond), models.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.now, start, end); got != tt.want {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEffective_CompletedIsTerminal(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := models.Election{
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		Status:    models.StatusCompleted,
	}
	if got := Effective(e, now); got != models.StatusCompleted {
		t.Errorf("Expected COMPLETED to stick, got %s", got)
	}

	e.Status = models.StatusUpcoming
	if got := Effective(e, now); got != models.StatusOngoing {
		t.Errorf("Expected ONGOING from window, got %s", got)
	}
}

func TestCountByStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	elections := []models.Election{
		{ID: "a", Status: models.StatusUpcoming, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)},
		{ID: "b", Status: models.StatusUpcoming, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)},
		{ID: "c", Status: models.StatusOngoing, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)},
		{ID: "d", Status: models.StatusCompleted, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)},
	}

	got := CountByStatus(elections, now)
	want := models.StatusCounts{Upcoming: 1, Ongoing: 1, Completed: 2}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestPlan(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	elections := []models.Election{
		// needs to open
		{ID: "a", StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: models.StatusUpcoming},
		// already consistent
		{ID: "b", StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), Status: models.StatusUpcoming},
		// needs to close
		{ID: "c", StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour), Status: models.StatusOngoing},
		// ended early, window says ongoing
		{ID: "d", StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: models.StatusCompleted},
		// skipped straight past ONGOING between sweeps
		{ID: "e", StartTime: now.Add(-3 * time.Hour), EndTime: now.Add(-2 * time.Hour), Status: models.StatusUpcoming},
	}

	updates := Plan(now, elections)

	want := map[string]models.ElectionStatus{
		"a": models.StatusOngoing,
		"c": models.StatusCompleted,
		"e": models.StatusCompleted,
	}
	if len(updates) != len(want) {
		t.Fatalf("Expected %d updates, got %d: %+v", len(want), len(updates), updates)
	}
	for _, u := range updates {
		if want[u.ElectionID] != u.To {
			t.Errorf("Election %s: expected %s, got %s", u.ElectionID, want[u.ElectionID], u.To)
		}
	}

	if again := Plan(now, nil); len(again) != 0 {
		t.Errorf("Expected no updates for no elections, got %d", len(again))
	}
}

func TestSweep_OpensOngoingElection(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	st := store.New(conn)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	clk := clock.NewFake(now)
	e := testutil.CreateTestElection(t, st, now.Add(-time.Hour), now.Add(time.Hour), models.StatusUpcoming)

	svc := NewService(st, clk, nil, nil)
	report, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Checked != 1 || report.Updated != 1 || report.Failed != 0 {
		t.Errorf("Unexpected report: %+v", report)
	}

	got, _ := st.GetElection(ctx, e.ID)
	if got.Status != models.StatusOngoing {
		t.Errorf("Expected ONGOING, got %s", got.Status)
	}

	// Idempotent: a second sweep at the same instant changes nothing
	report, err = svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	if report.Updated != 0 {
		t.Errorf("Expected no updates on second sweep, got %d", report.Updated)
	}

	// Past the end the sweep completes it
	clk.Advance(2 * time.Hour)
	if _, err := svc.Sweep(ctx); err != nil {
		t.Fatalf("Third sweep failed: %v", err)
	}
	got, _ = st.GetElection(ctx, e.ID)
	if got.Status != models.StatusCompleted {
		t.Errorf("Expected COMPLETED, got %s", got.Status)
	}
}

// flakyStore fails status updates for selected elections.
type flakyStore struct {
	elections []models.Election
	failFor   map[string]bool
	listErr   error
	updated   map[string]models.ElectionStatus
}

func (f *flakyStore) GetElection(ctx context.Context, id string) (models.Election, error) {
	for _, e := range f.elections {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Election{}, apperr.E(apperr.KindElectionNotFound, "flaky", nil)
}

func (f *flakyStore) ListOpenElections(ctx context.Context) ([]models.Election, error) {
	return f.elections, f.listErr
}

func (f *flakyStore) UpdateElectionStatus(ctx context.Context, id string, status models.ElectionStatus, at time.Time) (bool, error) {
	if f.failFor[id] {
		return false, errors.New("connection reset")
	}
	f.updated[id] = status
	return true, nil
}

func (f *flakyStore) CompleteElection(ctx context.Context, id string, start, end time.Time) (bool, error) {
	return true, nil
}

func TestSweep_FailureDoesNotBlockOthers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs := &flakyStore{
		elections: []models.Election{
			{ID: "one", StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: models.StatusUpcoming},
			{ID: "two", StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: models.StatusUpcoming},
			{ID: "three", StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: models.StatusUpcoming},
		},
		failFor: map[string]bool{"two": true},
		updated: map[string]models.ElectionStatus{},
	}

	svc := NewService(fs, clock.NewFake(now), nil, nil)
	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep should not fail on a single update error: %v", err)
	}
	if report.Updated != 2 || report.Failed != 1 {
		t.Errorf("Expected 2 updated / 1 failed, got %+v", report)
	}
	if fs.updated["one"] != models.StatusOngoing || fs.updated["three"] != models.StatusOngoing {
		t.Errorf("Expected remaining elections updated, got %v", fs.updated)
	}
}

func TestSweep_ListFailure(t *testing.T) {
	fs := &flakyStore{listErr: errors.New("database down"), updated: map[string]models.ElectionStatus{}}
	svc := NewService(fs, clock.NewFake(time.Now()), nil, nil)

	_, err := svc.Sweep(context.Background())
	if !apperr.Is(err, apperr.KindUnexpected) {
		t.Errorf("Expected UNEXPECTED, got %v", err)
	}
}

func TestEndNow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	st := store.New(conn)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	clk := clock.NewFake(now)
	svc := NewService(st, clk, nil, nil)

	e := testutil.CreateOngoingElection(t, st, now)

	ended, err := svc.EndNow(ctx, e.ID)
	if err != nil {
		t.Fatalf("EndNow failed: %v", err)
	}
	if ended.Status != models.StatusCompleted || !ended.EndTime.Equal(now) {
		t.Errorf("Unexpected ended election: %+v", ended)
	}

	stored, _ := st.GetElection(ctx, e.ID)
	if stored.Status != models.StatusCompleted || !stored.EndTime.Equal(now) {
		t.Errorf("Expected stored COMPLETED at %v, got %s at %v", now, stored.Status, stored.EndTime)
	}

	// Monotonic: no further transition, and a sweep leaves it alone
	if _, err := svc.EndNow(ctx, e.ID); !apperr.Is(err, apperr.KindElectionNotActive) {
		t.Errorf("Expected ELECTION_NOT_ACTIVE on second end, got %v", err)
	}
	clk.Set(now.Add(-30 * time.Minute))
	if _, err := svc.Sweep(ctx); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	stored, _ = st.GetElection(ctx, e.ID)
	if stored.Status != models.StatusCompleted {
		t.Errorf("COMPLETED election reverted to %s", stored.Status)
	}

	if _, err := svc.EndNow(ctx, "missing"); !apperr.Is(err, apperr.KindElectionNotFound) {
		t.Errorf("Expected ELECTION_NOT_FOUND, got %v", err)
	}
}

func TestEndNow_UpcomingKeepsStrictWindow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	st := store.New(conn)

	now := time.Now().UTC().Truncate(time.Second)
	svc := NewService(st, clock.NewFake(now), nil, nil)
	e := testutil.CreateTestElection(t, st, now.Add(time.Hour), now.Add(2*time.Hour), models.StatusUpcoming)

	ended, err := svc.EndNow(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("EndNow failed: %v", err)
	}
	if !ended.EndTime.Equal(now) || !ended.StartTime.Equal(now.Add(-time.Second)) {
		t.Errorf("Expected window %v-%v, got %v-%v", now.Add(-time.Second), now, ended.StartTime, ended.EndTime)
	}

	stored, err := st.GetElection(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("GetElection failed: %v", err)
	}
	if !stored.StartTime.Before(stored.EndTime) {
		t.Errorf("Expected stored start_time < end_time, got %v-%v", stored.StartTime, stored.EndTime)
	}
	if stored.Status != models.StatusCompleted {
		t.Errorf("Expected COMPLETED, got %s", stored.Status)
	}
}
