// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/pitchledger/internal/app"
)

// RecomputeDependencies defines the interface for full ledger recomputation.
type RecomputeDependencies interface {
	RecomputeAll(ctx context.Context, k float64) (int, error)
}

// RecomputeHandler handles ledger recomputation requests.
type RecomputeHandler struct {
	deps RecomputeDependencies
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies) *RecomputeHandler {
	return &RecomputeHandler{deps: deps}
}

// recomputeRequest mirrors the wire schema for POST /api/recompute. The body
// is optional; an empty one replays with the configured K factor.
type recomputeRequest struct {
	KFactor float64 `json:"k_factor,omitempty"`
}

type recomputeResponse struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
}

// HandlePostRecompute handles POST /api/recompute requests.
func (h *RecomputeHandler) HandlePostRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_recompute"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req recomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.KFactor < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	processed, err := h.deps.RecomputeAll(r.Context(), req.KFactor)
	switch {
	case errors.Is(err, app.ErrOperationInFlight):
		writeError(w, http.StatusConflict, "operation_in_flight", Wrap(op, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recomputeResponse{Status: "recomputed", Processed: processed})
}
