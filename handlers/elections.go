// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/closed-ballot/auth"
	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/cliparse"
	"github.com/danielhkuo/closed-ballot/lifecycle"
	"github.com/danielhkuo/closed-ballot/middleware"
	"github.com/danielhkuo/closed-ballot/models"
	"github.com/danielhkuo/closed-ballot/store"
)

// requireAdmin checks the X-Admin-Key header against the election ID.
// It writes a 401 and returns false when the key does not match.
func requireAdmin(w http.ResponseWriter, r *http.Request, electionID, salt string) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(electionID, adminKey, salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

type ElectionHandler struct {
	store     *store.SQLStore
	lifecycle *lifecycle.Service
	clock     clock.Clock
	cfg       cliparse.Config
}

func NewElectionHandler(st *store.SQLStore, lc *lifecycle.Service, clk clock.Clock, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{store: st, lifecycle: lc, clock: clk, cfg: cfg}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "start_time and end_time are required")
		return
	}
	if !req.StartTime.Before(req.EndTime) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "start_time must be before end_time")
		return
	}

	now := h.clock.Now()
	if !req.EndTime.After(now) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_time must be in the future")
		return
	}

	election := models.Election{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Status:      lifecycle.DeriveStatus(now, req.StartTime, req.EndTime),
		CreatedAt:   now,
	}
	if err := h.store.CreateElection(r.Context(), election); err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.WriteError(w, err)
		return
	}

	slog.Info("election created", "election_id", election.ID, "status", election.Status)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		Election: election,
		AdminKey: auth.GenerateAdminKey(election.ID, h.cfg.AdminKeySalt),
	})
}

// ListElections handles GET /elections
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.store.ListElections(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	now := h.clock.Now()
	for i := range elections {
		elections[i].Status = lifecycle.Effective(elections[i], now)
	}
	middleware.JSONResponse(w, http.StatusOK, elections)
}

// GetStats handles GET /elections/stats
// Counts use effective status, so they agree with ListElections between sweeps.
func (h *ElectionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	elections, err := h.store.ListElections(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, lifecycle.CountByStatus(elections, h.clock.Now()))
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID := r.PathValue("id")

	election, err := h.store.GetElection(ctx, electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	election.Status = lifecycle.Effective(election, h.clock.Now())

	positions, err := h.store.ListPositions(ctx, electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	ids := make([]string, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	candidates, err := h.store.ListCandidatesByPositions(ctx, ids)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	byPosition := make(map[string][]models.Candidate, len(positions))
	for _, c := range candidates {
		byPosition[c.PositionID] = append(byPosition[c.PositionID], c)
	}

	detail := models.ElectionDetail{
		Election:  election,
		Positions: make([]models.PositionWithCandidates, 0, len(positions)),
	}
	for _, p := range positions {
		cs := byPosition[p.ID]
		if cs == nil {
			cs = []models.Candidate{}
		}
		detail.Positions = append(detail.Positions, models.PositionWithCandidates{Position: p, Candidates: cs})
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// DeleteElection handles DELETE /elections/{id}
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !requireAdmin(w, r, electionID, h.cfg.AdminKeySalt) {
		return
	}

	if err := h.store.DeleteElection(r.Context(), electionID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("election deleted", "election_id", electionID)
	w.WriteHeader(http.StatusNoContent)
}

// EndElection handles POST /elections/{id}/end
func (h *ElectionHandler) EndElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !requireAdmin(w, r, electionID, h.cfg.AdminKeySalt) {
		return
	}

	election, err := h.lifecycle.EndNow(r.Context(), electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, election)
}

// loadForSetup returns the election if positions and candidates may still
// change. Setup closes once voting opens.
func (h *ElectionHandler) loadForSetup(w http.ResponseWriter, r *http.Request, electionID string) (models.Election, bool) {
	election, err := h.store.GetElection(r.Context(), electionID)
	if err != nil {
		middleware.WriteError(w, err)
		return models.Election{}, false
	}
	if lifecycle.Effective(election, h.clock.Now()) != models.StatusUpcoming {
		middleware.ErrorResponse(w, http.StatusConflict, "Election setup is closed once voting opens")
		return models.Election{}, false
	}
	return election, true
}

// AddPosition handles POST /elections/{id}/positions
func (h *ElectionHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if !requireAdmin(w, r, electionID, h.cfg.AdminKeySalt) {
		return
	}

	var req models.AddPositionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	if _, ok := h.loadForSetup(w, r, electionID); !ok {
		return
	}

	position := models.Position{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   h.clock.Now(),
	}
	if err := h.store.CreatePosition(r.Context(), position); err != nil {
		slog.Error("failed to insert position", "election_id", electionID, "error", err)
		middleware.WriteError(w, err)
		return
	}

	slog.Info("position added", "election_id", electionID, "position_id", position.ID)
	middleware.JSONResponse(w, http.StatusCreated, position)
}

// AddCandidate handles POST /elections/{id}/positions/{positionID}/candidates
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	positionID := r.PathValue("positionID")
	if !requireAdmin(w, r, electionID, h.cfg.AdminKeySalt) {
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	if _, ok := h.loadForSetup(w, r, electionID); !ok {
		return
	}
	if _, err := h.store.GetPosition(r.Context(), electionID, positionID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	candidate := models.Candidate{
		ID:         uuid.NewString(),
		PositionID: positionID,
		Name:       req.Name,
		Bio:        req.Bio,
		Image:      req.Image,
		CreatedAt:  h.clock.Now(),
	}
	if err := h.store.CreateCandidate(r.Context(), candidate); err != nil {
		slog.Error("failed to insert candidate", "position_id", positionID, "error", err)
		middleware.WriteError(w, err)
		return
	}

	slog.Info("candidate added", "election_id", electionID, "position_id", positionID, "candidate_id", candidate.ID)
	middleware.JSONResponse(w, http.StatusCreated, candidate)
}
