// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/closed-ballot/middleware"
	"github.com/danielhkuo/closed-ballot/results"
)

type ResultsHandler struct {
	aggregator *results.Aggregator
}

func NewResultsHandler(agg *results.Aggregator) *ResultsHandler {
	return &ResultsHandler{aggregator: agg}
}

// GetResults handles GET /elections/{id}/results
// Results are tallied fresh on every request, including while voting is open.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.aggregator.Compute(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}
