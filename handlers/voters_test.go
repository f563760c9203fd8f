// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/closed-ballot/models"
	"github.com/danielhkuo/closed-ballot/testutil"
)

func TestGenerateVoters(t *testing.T) {
	env := newTestEnv(t)
	e := testutil.CreateOngoingElection(t, env.store, env.clock.Now())
	ids := map[string]string{"id": e.ID}
	admin := env.adminHeaders(e.ID)

	tests := []struct {
		name       string
		count      int
		wantStatus int
		wantCode   string
	}{
		{"zero", 0, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative", -5, http.StatusBadRequest, "INVALID_INPUT"},
		{"too many", maxCodesPerRequest + 1, http.StatusBadRequest, ""},
		{"valid", 25, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(env.voters.GenerateVoters,
				testutil.MakeRequest("POST", "/elections/"+e.ID+"/voters", models.GenerateVotersRequest{Count: tt.count}, admin), ids)
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantCode != "" {
				if resp := decodeError(t, w); resp.Code != tt.wantCode {
					t.Errorf("Expected code %s, got %s", tt.wantCode, resp.Code)
				}
			}
		})
	}

	w := serve(env.voters.ListVoters, testutil.MakeRequest("GET", "/elections/"+e.ID+"/voters", nil, admin), ids)
	testutil.AssertStatus(t, w, http.StatusOK)

	var list []models.Voter
	testutil.AssertJSON(t, w, &list)
	if len(list) != 25 {
		t.Errorf("Expected 25 voters, got %d", len(list))
	}
	for _, v := range list {
		if v.Status != models.VoterNotVoted {
			t.Errorf("Expected NOT_VOTED, got %s", v.Status)
		}
	}
}

func TestGenerateVoters_UnknownElection(t *testing.T) {
	env := newTestEnv(t)
	ids := map[string]string{"id": "missing"}

	w := serve(env.voters.GenerateVoters,
		testutil.MakeRequest("POST", "/elections/missing/voters", models.GenerateVotersRequest{Count: 5}, env.adminHeaders("missing")), ids)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = serve(env.voters.ListVoters, testutil.MakeRequest("GET", "/elections/missing/voters", nil, env.adminHeaders("missing")), ids)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
