// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/pitchledger/internal/domain/model"
)

// RatingDependencies defines the interface for ledger dump operations.
type RatingDependencies interface {
	Ratings(ctx context.Context) ([]model.RatingEntry, error)
}

// RatingsHandler handles rating ledger requests.
type RatingsHandler struct {
	deps RatingDependencies
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps RatingDependencies) *RatingsHandler {
	return &RatingsHandler{deps: deps}
}

type ratingResponse struct {
	ID     int64   `json:"id"`
	TeamID int64   `json:"team_id"`
	Date   string  `json:"date"`
	Rating float64 `json:"rating"`
}

// HandleGetRatings handles GET /api/elo-ratings/ requests. Entries come back
// in (date, id) order, the same order they were appended in.
func (h *RatingsHandler) HandleGetRatings(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_ratings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries, err := h.deps.Ratings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	out := make([]ratingResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ratingResponse{
			ID:     e.ID,
			TeamID: e.TeamID,
			Date:   e.Date.Format(model.DateLayout),
			Rating: e.Rating,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
