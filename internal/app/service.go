// Package app provides the core business service wiring the rating ledger
// behind the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/domain/rating"
	"github.com/okian/pitchledger/internal/ingest"
	"github.com/okian/pitchledger/internal/ledger"
	"github.com/okian/pitchledger/pkg/logger"
	"github.com/okian/pitchledger/pkg/metrics"
)

// ApplyResult carries both post-match ratings back to the caller.
type ApplyResult struct {
	MatchID    int64   `json:"match_id"`
	HomeRating float64 `json:"home_rating"`
	AwayRating float64 `json:"away_rating"`
}

// Service implements the ledger operations exposed over HTTP and CLI.
//
// Ingestion and recomputation are serialized by a single global run lock:
// both mutate rating state over many rows, and interleaving them would
// compute updates against a half-written ledger. A second caller is
// rejected with ErrOperationInFlight rather than queued.
type Service struct {
	store        repository.Store
	k            float64
	maxBatchRows int
	log          logger.Logger

	runMu sync.Mutex
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithKFactor sets the default K factor for updates and recomputes.
func WithKFactor(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.k = k
		}
	}
}

// WithMaxBatchRows caps the number of rows accepted per ingestion batch.
func WithMaxBatchRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchRows = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		k:            rating.DefaultK,
		maxBatchRows: 10_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// kOrDefault resolves a per-request K override; zero means "use configured".
func (s *Service) kOrDefault(k float64) float64 {
	if k > 0 {
		return k
	}
	return s.k
}

// ApplyMatch runs the incremental updater for an already-persisted match.
func (s *Service) ApplyMatch(ctx context.Context, matchID int64, k float64) (ApplyResult, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return ApplyResult{}, err
	}
	home, away, err := ledger.NewUpdater(s.store).Apply(ctx, m, s.kOrDefault(k))
	if err != nil {
		return ApplyResult{}, err
	}
	s.log.Info(ctx, "match applied",
		logger.Int64("matchID", m.ID),
		logger.Float64("homeRating", home),
		logger.Float64("awayRating", away),
	)
	return ApplyResult{MatchID: m.ID, HomeRating: home, AwayRating: away}, nil
}

// CreateMatch persists a new match and immediately applies its rating
// update, both in one transaction. Mirrors the behavior of posting a match
// through the API: a created match always carries its two ledger entries.
func (s *Service) CreateMatch(ctx context.Context, m model.Match, k float64) (model.Match, ApplyResult, error) {
	var (
		created model.Match
		result  ApplyResult
	)
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		var err error
		created, err = tx.CreateMatch(ctx, m)
		if err != nil {
			return err
		}
		home, away, err := ledger.NewUpdater(tx).Apply(ctx, created, s.kOrDefault(k))
		if err != nil {
			return err
		}
		result = ApplyResult{MatchID: created.ID, HomeRating: home, AwayRating: away}
		return nil
	})
	if err != nil {
		return model.Match{}, ApplyResult{}, err
	}
	s.refreshGauges(ctx)
	return created, result, nil
}

// IngestBatch feeds one batch of raw rows through the ingestion pipeline
// under the global run lock.
func (s *Service) IngestBatch(ctx context.Context, rows []ingest.Row, league string) (ingest.Report, error) {
	if s.maxBatchRows > 0 && len(rows) > s.maxBatchRows {
		return ingest.Report{}, fmt.Errorf("%d rows: %w", len(rows), ErrBatchTooLarge)
	}
	if !s.runMu.TryLock() {
		metrics.RecordRunRejected()
		return ingest.Report{}, ErrOperationInFlight
	}
	defer s.runMu.Unlock()

	pipe := ingest.New(s.store, ingest.WithKFactor(s.k), ingest.WithLogger(s.log))
	report, err := pipe.Run(ctx, rows, league)
	if err != nil {
		return report, err
	}
	s.refreshGauges(ctx)
	return report, nil
}

// RecomputeAll wipes the ledger and replays every match in canonical order
// (date ascending, id ascending) through the incremental updater, all inside
// one transaction and under the global run lock. Returns the number of
// matches replayed. The result is the canonical ledger state: identical
// inputs always reproduce identical entries.
func (s *Service) RecomputeAll(ctx context.Context, k float64) (int, error) {
	if !s.runMu.TryLock() {
		metrics.RecordRunRejected()
		return 0, ErrOperationInFlight
	}
	defer s.runMu.Unlock()

	start := time.Now()
	kf := s.kOrDefault(k)
	processed := 0
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		if err := tx.WipeRatings(ctx); err != nil {
			return err
		}
		matches, err := tx.ListMatchesOrdered(ctx)
		if err != nil {
			return err
		}
		up := ledger.NewUpdater(tx)
		for _, m := range matches {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("recompute interrupted: %w", err)
			}
			if _, _, err := up.Apply(ctx, m, kf); err != nil {
				return fmt.Errorf("replay match %d: %w", m.ID, err)
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.RecordRecompute(processed, time.Since(start).Seconds())
	s.refreshGauges(ctx)
	s.log.Info(ctx, "ledger recomputed",
		logger.Int("processed", processed),
		logger.Float64("k", kf),
		logger.Duration("took", time.Since(start)),
	)
	return processed, nil
}

// Leaderboard returns up to limit teams ordered by current rating.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]repository.TeamRating, error) {
	rows, err := s.store.CurrentRatings(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

// TopTeamsByLeague returns the highest-rated team in each league.
func (s *Service) TopTeamsByLeague(ctx context.Context) (map[string]repository.TeamRating, error) {
	rows, err := s.store.CurrentRatings(ctx)
	if err != nil {
		return nil, err
	}
	top := make(map[string]repository.TeamRating)
	for _, row := range rows {
		if _, ok := top[row.League]; !ok {
			// Rows arrive rating-descending, so first wins.
			top[row.League] = row
		}
	}
	return top, nil
}

// Teams lists every team.
func (s *Service) Teams(ctx context.Context) ([]model.Team, error) {
	return s.store.ListTeams(ctx)
}

// CreateTeam creates a team directly, bypassing ingestion.
func (s *Service) CreateTeam(ctx context.Context, name, league string) (model.Team, error) {
	team, err := s.store.CreateTeam(ctx, name, league)
	if err != nil {
		return model.Team{}, err
	}
	s.refreshGauges(ctx)
	return team, nil
}

// Matches lists every match in canonical order.
func (s *Service) Matches(ctx context.Context) ([]model.Match, error) {
	return s.store.ListMatchesOrdered(ctx)
}

// Ratings dumps the full ledger in (date, id) order.
func (s *Service) Ratings(ctx context.Context) ([]model.RatingEntry, error) {
	return s.store.ListRatings(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	stats := map[string]interface{}{
		"kFactor":      s.k,
		"maxBatchRows": s.maxBatchRows,
	}
	if teams, err := s.store.ListTeams(ctx); err == nil {
		stats["teams"] = len(teams)
	}
	if n, err := s.store.CountMatches(ctx); err == nil {
		stats["matches"] = n
	}
	if n, err := s.store.CountRatings(ctx); err == nil {
		stats["ratingEntries"] = n
	}
	return stats
}

// refreshGauges pushes current store totals into the metrics gauges.
func (s *Service) refreshGauges(ctx context.Context) {
	if teams, err := s.store.ListTeams(ctx); err == nil {
		metrics.UpdateTotalTeams(int64(len(teams)))
	}
	if n, err := s.store.CountMatches(ctx); err == nil {
		metrics.UpdateTotalMatches(n)
	}
	if n, err := s.store.CountRatings(ctx); err == nil {
		metrics.UpdateTotalRatings(n)
	}
}
