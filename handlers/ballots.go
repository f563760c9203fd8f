// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/closed-ballot/ledger"
	"github.com/danielhkuo/closed-ballot/middleware"
	"github.com/danielhkuo/closed-ballot/models"
)

type BallotHandler struct {
	ledger *ledger.Ledger
}

func NewBallotHandler(l *ledger.Ledger) *BallotHandler {
	return &BallotHandler{ledger: l}
}

// SignIn handles POST /elections/{id}/sign-in
func (h *BallotHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.SignInRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, err := h.ledger.SignIn(r.Context(), electionID, req.Code)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SignInResponse{
		VoterID:    session.Voter.ID,
		ElectionID: session.Election.ID,
		Election:   session.Election,
		Status:     session.Voter.Status,
	})
}

// SubmitBallot handles POST /elections/{id}/ballots
func (h *BallotHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	code := r.Header.Get("X-Voter-Code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Code header is required")
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	receipt, err := h.ledger.Submit(r.Context(), electionID, code, req.Choices)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		VotesRecorded: receipt.VotesRecorded,
		VotedAt:       receipt.VotedAt,
		Message:       "Ballot submitted",
	})
}
