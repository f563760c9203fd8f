// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/closed-ballot/auth"
	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/cliparse"
	"github.com/danielhkuo/closed-ballot/ledger"
	"github.com/danielhkuo/closed-ballot/lifecycle"
	"github.com/danielhkuo/closed-ballot/models"
	"github.com/danielhkuo/closed-ballot/results"
	"github.com/danielhkuo/closed-ballot/store"
	"github.com/danielhkuo/closed-ballot/testutil"
	"github.com/danielhkuo/closed-ballot/voters"
)

// testEnv wires every handler over one test database and a fake clock.
type testEnv struct {
	store     *store.SQLStore
	clock     *clock.Fake
	cfg       cliparse.Config
	lifecycle *lifecycle.Service
	elections *ElectionHandler
	voters    *VoterHandler
	ballots   *BallotHandler
	results   *ResultsHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	st := store.New(conn)
	clk := clock.NewFake(time.Now().UTC().Truncate(time.Second))
	cfg := testutil.GetTestConfig()

	lc := lifecycle.NewService(st, clk, nil, nil)
	issuer := voters.NewIssuer(st, voters.Options{
		CodeLength:  cfg.VoterCodeLength,
		BatchSize:   cfg.VoterCodeBatchSize,
		MaxAttempts: cfg.VoterCodeMaxAttempts,
	}, nil, nil)

	return &testEnv{
		store:     st,
		clock:     clk,
		cfg:       cfg,
		lifecycle: lc,
		elections: NewElectionHandler(st, lc, clk, cfg),
		voters:    NewVoterHandler(st, issuer, cfg),
		ballots:   NewBallotHandler(ledger.New(st, clk, nil, nil)),
		results:   NewResultsHandler(results.NewAggregator(st, clk, nil)),
	}
}

func (e *testEnv) adminHeaders(electionID string) map[string]string {
	return map[string]string{"X-Admin-Key": auth.GenerateAdminKey(electionID, e.cfg.AdminKeySalt)}
}

// serve runs a handler with path values set the way ServeMux would.
func serve(h http.HandlerFunc, req *http.Request, pathValues map[string]string) *httptest.ResponseRecorder {
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}
