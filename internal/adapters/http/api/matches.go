// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/app"
	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/ledger"
)

// MatchDependencies defines the interface for match operations.
type MatchDependencies interface {
	Matches(ctx context.Context) ([]model.Match, error)
	CreateMatch(ctx context.Context, m model.Match, k float64) (model.Match, app.ApplyResult, error)
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// matchRequest mirrors the wire schema for POST /api/matches/.
type matchRequest struct {
	Date       string  `json:"date"`
	HomeTeamID int64   `json:"home_team_id"`
	AwayTeamID int64   `json:"away_team_id"`
	HomeScore  int     `json:"home_score"`
	AwayScore  int     `json:"away_score"`
	KFactor    float64 `json:"k_factor,omitempty"`
}

func (m matchRequest) validate() (time.Time, error) {
	switch {
	case m.HomeTeamID <= 0:
		return time.Time{}, errors.New("missing home_team_id")
	case m.AwayTeamID <= 0:
		return time.Time{}, errors.New("missing away_team_id")
	case m.HomeScore < 0 || m.AwayScore < 0:
		return time.Time{}, errors.New("scores must be non-negative")
	case m.KFactor < 0:
		return time.Time{}, errors.New("k_factor must be non-negative")
	}
	date, err := time.Parse(model.DateLayout, m.Date)
	if err != nil {
		return time.Time{}, errors.New("invalid date; must be YYYY-MM-DD")
	}
	return model.Day(date), nil
}

type matchResponse struct {
	ID         int64  `json:"id"`
	Date       string `json:"date"`
	HomeTeamID int64  `json:"home_team_id"`
	AwayTeamID int64  `json:"away_team_id"`
	HomeScore  int    `json:"home_score"`
	AwayScore  int    `json:"away_score"`
}

type matchCreatedResponse struct {
	Match      matchResponse `json:"match"`
	HomeRating float64       `json:"home_rating"`
	AwayRating float64       `json:"away_rating"`
}

func toMatchResponse(m model.Match) matchResponse {
	return matchResponse{
		ID:         m.ID,
		Date:       m.Date.Format(model.DateLayout),
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
	}
}

// HandleMatches handles GET and POST /api/matches/ requests.
func (h *MatchesHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *MatchesHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_matches"
	matches, err := h.deps.Matches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// create persists a match and applies its rating update in one step, so a
// posted match always shows up with both new ratings.
func (h *MatchesHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	date, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	created, result, err := h.deps.CreateMatch(r.Context(), model.Match{
		Date:       date,
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		HomeScore:  req.HomeScore,
		AwayScore:  req.AwayScore,
	}, req.KFactor)
	switch {
	case errors.Is(err, ledger.ErrMissingParticipant), errors.Is(err, repository.ErrTeamNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		return
	case errors.Is(err, repository.ErrDuplicateMatch):
		writeError(w, http.StatusConflict, "duplicate_match", Wrap(op, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, matchCreatedResponse{
		Match:      toMatchResponse(created),
		HomeRating: result.HomeRating,
		AwayRating: result.AwayRating,
	})
}
