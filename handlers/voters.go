// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/closed-ballot/cliparse"
	"github.com/danielhkuo/closed-ballot/middleware"
	"github.com/danielhkuo/closed-ballot/models"
	"github.com/danielhkuo/closed-ballot/store"
	"github.com/danielhkuo/closed-ballot/voters"
)

// maxCodesPerRequest caps a single generate call.
const maxCodesPerRequest = 10000

type VoterHandler struct {
	store  *store.SQLStore
	issuer *voters.Issuer
	cfg    cliparse.Config
}

func NewVoterHandler(st *store.SQLStore, issuer *voters.Issuer, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{store: st, issuer: issuer, cfg: cfg}
}

// GenerateVoters handles POST /elections/{id}/voters
func (h *VoterHandler) GenerateVoters(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !requireAdmin(w, r, electionID, h.cfg.AdminKeySalt) {
		return
	}

	var req models.GenerateVotersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Count > maxCodesPerRequest {
		middleware.ErrorResponse(w, http.StatusBadRequest, "count is too large")
		return
	}

	issued, err := h.issuer.Generate(r.Context(), electionID, req.Count)
	if err != nil {
		if len(issued) > 0 {
			// Committed codes stay valid; the caller reconciles via GET.
			slog.Warn("voter code generation partially succeeded",
				"election_id", electionID,
				"requested", req.Count,
				"issued", len(issued),
			)
		}
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.GenerateVotersResponse{
		Requested: req.Count,
		Issued:    len(issued),
		Voters:    issued,
	})
}

// ListVoters handles GET /elections/{id}/voters
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !requireAdmin(w, r, electionID, h.cfg.AdminKeySalt) {
		return
	}

	if _, err := h.store.GetElection(r.Context(), electionID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	list, err := h.store.ListVoters(r.Context(), electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}
