// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/closed-ballot/apperr"
	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/models"
	"github.com/danielhkuo/closed-ballot/store"
	"github.com/danielhkuo/closed-ballot/testutil"
)

type fixture struct {
	st        *store.SQLStore
	clk       *clock.Fake
	ledger    *Ledger
	election  models.Election
	president models.Position
	treasurer models.Position
	alice     models.Candidate
	bob       models.Candidate
	carol     models.Candidate
	voter     models.Voter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })
	st := store.New(conn)

	now := time.Now().UTC().Truncate(time.Second)
	f := &fixture{st: st, clk: clock.NewFake(now)}
	f.election = testutil.CreateOngoingElection(t, st, now)
	f.president = testutil.AddTestPosition(t, st, f.election.ID, "President")
	f.treasurer = testutil.AddTestPosition(t, st, f.election.ID, "Treasurer")
	f.alice = testutil.AddTestCandidate(t, st, f.president.ID, "Alice")
	f.bob = testutil.AddTestCandidate(t, st, f.president.ID, "Bob")
	f.carol = testutil.AddTestCandidate(t, st, f.treasurer.ID, "Carol")
	f.voter = testutil.CreateTestVoter(t, st, f.election.ID, "ABC1234")
	f.ledger = New(st, f.clk, nil, nil)
	return f
}

func (f *fixture) fullBallot() []models.Choice {
	return []models.Choice{
		{PositionID: f.president.ID, CandidateID: f.alice.ID},
		{PositionID: f.treasurer.ID, CandidateID: f.carol.ID},
	}
}

func TestSubmit_SecondSubmissionRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	receipt, err := f.ledger.Submit(ctx, f.election.ID, f.voter.Code, f.fullBallot())
	if err != nil {
		t.Fatalf("First submit failed: %v", err)
	}
	if receipt.VotesRecorded != 2 || receipt.VoterID != f.voter.ID {
		t.Errorf("Unexpected receipt: %+v", receipt)
	}

	_, err = f.ledger.Submit(ctx, f.election.ID, f.voter.Code, []models.Choice{
		{PositionID: f.president.ID, CandidateID: f.bob.ID},
	})
	if !apperr.Is(err, apperr.KindVoterAlreadyVoted) {
		t.Fatalf("Expected VOTER_ALREADY_VOTED, got %v", err)
	}

	votes, err := f.st.ListVotes(ctx, f.election.ID)
	if err != nil {
		t.Fatalf("ListVotes failed: %v", err)
	}
	if len(votes) != 2 {
		t.Errorf("Expected exactly 2 votes, got %d", len(votes))
	}
	for _, v := range votes {
		if v.CandidateID == f.bob.ID {
			t.Error("Second ballot must not be recorded")
		}
	}

	voter, _ := f.st.GetVoterByCode(ctx, f.election.ID, f.voter.Code)
	if voter.Status != models.VoterVoted || voter.VotedAt == nil {
		t.Errorf("Expected voter VOTED with timestamp, got %+v", voter)
	}
}

func TestSubmit_ConcurrentSameVoter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg           sync.WaitGroup
		successes    atomic.Int32
		alreadyVoted atomic.Int32
		others       atomic.Int32
	)

	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.ledger.Submit(ctx, f.election.ID, f.voter.Code, f.fullBallot())
			switch {
			case err == nil:
				successes.Add(1)
			case apperr.Is(err, apperr.KindVoterAlreadyVoted):
				alreadyVoted.Add(1)
			default:
				others.Add(1)
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("Expected exactly 1 successful submission, got %d", successes.Load())
	}
	if alreadyVoted.Load() != attempts-1 {
		t.Errorf("Expected %d VOTER_ALREADY_VOTED, got %d", attempts-1, alreadyVoted.Load())
	}

	votes, _ := f.st.ListVotes(ctx, f.election.ID)
	if len(votes) != 2 {
		t.Errorf("Expected 2 persisted votes, got %d", len(votes))
	}
}

func TestSubmit_LookupFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		electionID string
		code       string
		want       apperr.Kind
	}{
		{"unknown election", "missing", f.voter.Code, apperr.KindElectionNotFound},
		{"unknown code", f.election.ID, "ZZZ9999", apperr.KindVoterNotFound},
		{"blank code", f.election.ID, "   ", apperr.KindVoterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Submit(ctx, tt.electionID, tt.code, f.fullBallot())
			if !apperr.Is(err, tt.want) {
				t.Errorf("Expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestSubmit_CodeIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)

	if _, err := f.ledger.Submit(context.Background(), f.election.ID, " abc1234 ", f.fullBallot()); err != nil {
		t.Fatalf("Expected normalized code to be accepted: %v", err)
	}
}

func TestSubmit_ElectionNotActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Window closed but the sweep has not run yet
	f.clk.Advance(2 * time.Hour)
	if _, err := f.ledger.Submit(ctx, f.election.ID, f.voter.Code, f.fullBallot()); !apperr.Is(err, apperr.KindElectionNotActive) {
		t.Errorf("Expected ELECTION_NOT_ACTIVE after end, got %v", err)
	}

	// Not yet open
	f.clk.Advance(-4 * time.Hour)
	if _, err := f.ledger.Submit(ctx, f.election.ID, f.voter.Code, f.fullBallot()); !apperr.Is(err, apperr.KindElectionNotActive) {
		t.Errorf("Expected ELECTION_NOT_ACTIVE before start, got %v", err)
	}

	if n := len(mustVotes(t, f)); n != 0 {
		t.Errorf("Expected no votes, got %d", n)
	}
}

func TestSubmit_EndedEarly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.st.CompleteElection(ctx, f.election.ID, f.election.StartTime, f.clk.Now()); err != nil {
		t.Fatalf("CompleteElection failed: %v", err)
	}
	if _, err := f.ledger.Submit(ctx, f.election.ID, f.voter.Code, f.fullBallot()); !apperr.Is(err, apperr.KindElectionNotActive) {
		t.Errorf("Expected ELECTION_NOT_ACTIVE, got %v", err)
	}
}

func TestSubmit_InvalidChoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := testutil.CreateOngoingElection(t, f.st, f.clk.Now())
	foreignPosition := testutil.AddTestPosition(t, f.st, other.ID, "Secretary")
	foreignCandidate := testutil.AddTestCandidate(t, f.st, foreignPosition.ID, "Mallory")

	tests := []struct {
		name    string
		choices []models.Choice
	}{
		{"empty ballot", nil},
		{"candidate under other position", []models.Choice{
			{PositionID: f.treasurer.ID, CandidateID: f.alice.ID},
		}},
		{"position from another election", []models.Choice{
			{PositionID: foreignPosition.ID, CandidateID: foreignCandidate.ID},
		}},
		{"unknown candidate", []models.Choice{
			{PositionID: f.president.ID, CandidateID: "nobody"},
		}},
		{"position repeated", []models.Choice{
			{PositionID: f.president.ID, CandidateID: f.alice.ID},
			{PositionID: f.president.ID, CandidateID: f.bob.ID},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Submit(ctx, f.election.ID, f.voter.Code, tt.choices)
			if !apperr.Is(err, apperr.KindInvalidInput) {
				t.Errorf("Expected INVALID_INPUT, got %v", err)
			}
		})
	}

	// Rejected ballots leave the voter able to vote
	voter, _ := f.st.GetVoterByCode(ctx, f.election.ID, f.voter.Code)
	if voter.Status != models.VoterNotVoted {
		t.Errorf("Expected voter still NOT_VOTED, got %s", voter.Status)
	}
	if n := len(mustVotes(t, f)); n != 0 {
		t.Errorf("Expected no votes, got %d", n)
	}
}

func TestSubmit_PartialBallot(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.ledger.Submit(context.Background(), f.election.ID, f.voter.Code, []models.Choice{
		{PositionID: f.president.ID, CandidateID: f.bob.ID},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if receipt.VotesRecorded != 1 {
		t.Errorf("Expected 1 vote recorded, got %d", receipt.VotesRecorded)
	}
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.ledger.SignIn(ctx, f.election.ID, f.voter.Code)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if session.Voter.ID != f.voter.ID || session.Election.Status != models.StatusOngoing {
		t.Errorf("Unexpected session: %+v", session)
	}

	if _, err := f.ledger.Submit(ctx, f.election.ID, f.voter.Code, f.fullBallot()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := f.ledger.SignIn(ctx, f.election.ID, f.voter.Code); !apperr.Is(err, apperr.KindVoterAlreadyVoted) {
		t.Errorf("Expected VOTER_ALREADY_VOTED for spent code, got %v", err)
	}
	if _, err := f.ledger.SignIn(ctx, f.election.ID, "NOPE000"); !apperr.Is(err, apperr.KindVoterNotFound) {
		t.Errorf("Expected VOTER_NOT_FOUND, got %v", err)
	}
}

func mustVotes(t *testing.T, f *fixture) []models.Vote {
	t.Helper()
	votes, err := f.st.ListVotes(context.Background(), f.election.ID)
	if err != nil {
		t.Fatalf("ListVotes failed: %v", err)
	}
	return votes
}
