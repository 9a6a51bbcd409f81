// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/app"
	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/ingest"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Teams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, name, league string) (model.Team, error)
	Matches(ctx context.Context) ([]model.Match, error)
	CreateMatch(ctx context.Context, m model.Match, k float64) (model.Match, app.ApplyResult, error)
	Ratings(ctx context.Context) ([]model.RatingEntry, error)
	IngestBatch(ctx context.Context, rows []ingest.Row, league string) (ingest.Report, error)
	RecomputeAll(ctx context.Context, k float64) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]repository.TeamRating, error)
	TopTeamsByLeague(ctx context.Context) (map[string]repository.TeamRating, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	teamsHandler       *TeamsHandler
	matchesHandler     *MatchesHandler
	ratingsHandler     *RatingsHandler
	ingestHandler      *IngestHandler
	recomputeHandler   *RecomputeHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		teamsHandler:       NewTeamsHandler(deps),
		matchesHandler:     NewMatchesHandler(deps),
		ratingsHandler:     NewRatingsHandler(deps),
		ingestHandler:      NewIngestHandler(deps),
		recomputeHandler:   NewRecomputeHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/teams/", MetricsMiddleware(s.teamsHandler.HandleTeams, "teams"))
	mux.HandleFunc("/api/matches/", MetricsMiddleware(s.matchesHandler.HandleMatches, "matches"))
	mux.HandleFunc("/api/elo-ratings/", MetricsMiddleware(s.ratingsHandler.HandleGetRatings, "elo_ratings"))
	mux.HandleFunc("/api/ingest", MetricsMiddleware(s.ingestHandler.HandlePostIngest, "ingest"))
	mux.HandleFunc("/api/recompute", MetricsMiddleware(s.recomputeHandler.HandlePostRecompute, "recompute"))
	mux.HandleFunc("/leaderboard/leagues", MetricsMiddleware(s.leaderboardHandler.HandleGetTopPerLeague, "leaderboard_leagues"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
