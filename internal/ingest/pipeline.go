// Package ingest converts untrusted tabular match records into ledger-safe
// events: validation, team resolution, deduplication and chained rating
// updates, committed as one atomic batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/domain/dedupe"
	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/domain/rating"
	"github.com/okian/pitchledger/internal/ledger"
	"github.com/okian/pitchledger/pkg/logger"
	"github.com/okian/pitchledger/pkg/metrics"
)

// Pipeline stages one batch of raw rows into matches plus rating entries.
type Pipeline struct {
	store repository.Store
	log   logger.Logger
	k     float64
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithKFactor overrides the K factor used for the batch's rating updates.
func WithKFactor(k float64) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.k = k
		}
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a Pipeline over store.
func New(store repository.Store, opts ...Option) *Pipeline {
	p := &Pipeline{store: store, k: rating.DefaultK}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get()
	}
	return p
}

// staged couples a match with the two rating entries it produced. Entries
// are staged alongside the match so a batch can never half-commit.
type staged struct {
	match   model.Match
	entries [2]model.RatingEntry
}

// Run processes one batch of rows under the given league label.
//
// Per row: validation failures and duplicates are skipped and reported, the
// rest of the batch continues. Team lookups/creations commit eagerly; the
// staged matches and rating entries commit together in a single transaction
// at the end, so a persistence failure leaves no partial batch behind.
func (p *Pipeline) Run(ctx context.Context, rows []Row, league string) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString(), League: league}

	cache := ledger.NewRatingCache(p.store)
	seen := dedupe.New()
	var batch []staged

	for i, raw := range rows {
		parsed, err := raw.normalize()
		if err != nil {
			report.Skipped = append(report.Skipped, Skip{Row: i, Reason: ReasonInvalidRow, Detail: err.Error()})
			metrics.RecordRowSkipped(string(ReasonInvalidRow))
			p.log.Debug(ctx, "skipping invalid row", logger.Int("row", i), logger.Error(err))
			continue
		}

		home, err := p.resolveTeam(ctx, parsed.home, league)
		if err != nil {
			return report, fmt.Errorf("resolve home team %q: %w", parsed.home, err)
		}
		away, err := p.resolveTeam(ctx, parsed.away, league)
		if err != nil {
			return report, fmt.Errorf("resolve away team %q: %w", parsed.away, err)
		}

		key := model.MatchKey{Date: parsed.date, HomeTeamID: home.ID, AwayTeamID: away.ID}
		if seen.SeenAndRecord(ctx, key.String()) {
			report.Skipped = append(report.Skipped, Skip{Row: i, Reason: ReasonDuplicateMatch, Detail: "repeated within batch"})
			metrics.RecordRowSkipped(string(ReasonDuplicateMatch))
			continue
		}
		exists, err := p.store.MatchExists(ctx, key)
		if err != nil {
			return report, fmt.Errorf("check match key: %w", err)
		}
		if exists {
			report.Skipped = append(report.Skipped, Skip{Row: i, Reason: ReasonDuplicateMatch, Detail: "already in ledger"})
			metrics.RecordRowSkipped(string(ReasonDuplicateMatch))
			continue
		}

		homeBefore, err := cache.Latest(ctx, home.ID)
		if err != nil {
			return report, fmt.Errorf("seed rating cache: %w", err)
		}
		awayBefore, err := cache.Latest(ctx, away.ID)
		if err != nil {
			return report, fmt.Errorf("seed rating cache: %w", err)
		}

		newHome, newAway := ledger.Compute(homeBefore, awayBefore, parsed.homeGoals, parsed.awayGoals, p.k)
		cache.Put(home.ID, newHome)
		cache.Put(away.ID, newAway)

		batch = append(batch, staged{
			match: model.Match{
				Date:       parsed.date,
				HomeTeamID: home.ID,
				AwayTeamID: away.ID,
				HomeScore:  parsed.homeGoals,
				AwayScore:  parsed.awayGoals,
			},
			entries: [2]model.RatingEntry{
				{TeamID: home.ID, Date: parsed.date, Rating: newHome},
				{TeamID: away.ID, Date: parsed.date, Rating: newAway},
			},
		})
	}

	if err := p.commit(ctx, batch); err != nil {
		return report, err
	}

	report.Added = len(batch)
	for range batch {
		metrics.RecordMatchIngested()
	}
	metrics.RecordRatingsAppended(2 * len(batch))
	metrics.RecordIngestBatch(time.Since(start).Seconds())

	p.log.Info(ctx, "ingestion batch finished",
		logger.String("runID", report.RunID),
		logger.String("league", league),
		logger.Int("rows", len(rows)),
		logger.Int("added", report.Added),
		logger.Int("skipped", len(report.Skipped)),
		logger.Duration("took", time.Since(start)),
	)
	return report, nil
}

// commit persists the whole staged batch in one transaction. Rating entries
// go in match by match so entry ids follow replay order.
func (p *Pipeline) commit(ctx context.Context, batch []staged) error {
	if len(batch) == 0 {
		return nil
	}
	return p.store.Transact(ctx, func(tx repository.Store) error {
		for _, s := range batch {
			if _, err := tx.CreateMatch(ctx, s.match); err != nil {
				return fmt.Errorf("stage match %s: %w", s.match.Key(), err)
			}
			if err := tx.AppendRatings(ctx, s.entries[0], s.entries[1]); err != nil {
				return fmt.Errorf("stage ratings for %s: %w", s.match.Key(), err)
			}
		}
		return nil
	})
}

// resolveTeam finds a team by name, creating it under the batch's league on
// first sighting and refreshing the league label on every later one.
func (p *Pipeline) resolveTeam(ctx context.Context, name, league string) (model.Team, error) {
	team, err := p.store.FindTeamByName(ctx, name)
	if errors.Is(err, repository.ErrTeamNotFound) {
		return p.store.CreateTeam(ctx, name, league)
	}
	if err != nil {
		return model.Team{}, err
	}
	if team.League != league {
		if err := p.store.SetTeamLeague(ctx, team.ID, league); err != nil {
			return model.Team{}, err
		}
		team.League = league
	}
	return team, nil
}
