// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pitchledger/internal/domain/model"
)

// TeamDependencies defines the interface for team operations.
type TeamDependencies interface {
	Teams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, name, league string) (model.Team, error)
}

// TeamsHandler handles team requests.
type TeamsHandler struct {
	deps TeamDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// teamRequest mirrors the wire schema for POST /api/teams/.
type teamRequest struct {
	Name   string `json:"name"`
	League string `json:"league"`
}

func (t teamRequest) validate() error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(t.League) == "":
		return errors.New("missing league")
	}
	return nil
}

type teamResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	League string `json:"league"`
}

func toTeamResponse(t model.Team) teamResponse {
	return teamResponse{ID: t.ID, Name: t.Name, League: t.League}
}

// HandleTeams handles GET and POST /api/teams/ requests.
func (h *TeamsHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *TeamsHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_teams"
	teams, err := h.deps.Teams(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TeamsHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	team, err := h.deps.CreateTeam(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.League))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, toTeamResponse(team))
}
