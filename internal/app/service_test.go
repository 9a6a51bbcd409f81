package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/app"
	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/ingest"
	"github.com/okian/pitchledger/internal/ledger"
	"github.com/okian/pitchledger/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// ledgerShape flattens entries to comparable tuples; entry ids are assigned
// fresh after every wipe so they are excluded on purpose.
type ledgerShape struct {
	TeamID int64
	Date   time.Time
	Rating float64
}

func shapeOf(entries []model.RatingEntry) []ledgerShape {
	out := make([]ledgerShape, len(entries))
	for i, e := range entries {
		out[i] = ledgerShape{TeamID: e.TeamID, Date: e.Date, Rating: e.Rating}
	}
	return out
}

func seedHistory(ctx context.Context, svc *app.Service) error {
	rows := []ingest.Row{
		{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "2", AwayScore: "1"},
		{Date: "12/08/2023", HomeTeam: "Liverpool", AwayTeam: "Everton", HomeScore: "3", AwayScore: "0"},
		{Date: "19/08/2023", HomeTeam: "Chelsea", AwayTeam: "Liverpool", HomeScore: "1", AwayScore: "1"},
		{Date: "26/08/2023", HomeTeam: "Everton", AwayTeam: "Arsenal", HomeScore: "0", AwayScore: "2"},
	}
	_, err := svc.IngestBatch(ctx, rows, "Premier League")
	return err
}

func TestServiceApplyAndCreate(t *testing.T) {
	Convey("Given a service over an in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := app.New(store)

		home, _ := store.CreateTeam(ctx, "Arsenal", "Premier League")
		away, _ := store.CreateTeam(ctx, "Chelsea", "Premier League")
		day := model.Date(2023, time.August, 12)

		Convey("When a match is created through the service", func() {
			created, result, err := svc.CreateMatch(ctx, model.Match{
				Date: day, HomeTeamID: home.ID, AwayTeamID: away.ID, HomeScore: 2, AwayScore: 1,
			}, 0)

			Convey("Then the match and both ledger entries exist", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotEqual, 0)
				So(result.HomeRating, ShouldEqual, 1010.0)
				So(result.AwayRating, ShouldEqual, 990.0)
				count, err := store.CountRatings(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
			})
		})

		Convey("When a persisted match is re-applied explicitly", func() {
			created, _, err := svc.CreateMatch(ctx, model.Match{
				Date: day, HomeTeamID: home.ID, AwayTeamID: away.ID, HomeScore: 2, AwayScore: 1,
			}, 0)
			So(err, ShouldBeNil)

			result, err := svc.ApplyMatch(ctx, created.ID, 0)

			Convey("Then it chains from the latest ratings", func() {
				So(err, ShouldBeNil)
				// Second application of the same win moves the favourite
				// less: it is now expected to win.
				So(result.HomeRating, ShouldBeGreaterThan, 1010.0)
				So(result.HomeRating-1010.0, ShouldBeLessThan, 10.0)
			})
		})

		Convey("When applying a match that does not exist", func() {
			_, err := svc.ApplyMatch(ctx, 424242, 0)

			Convey("Then it reports match not found", func() {
				So(errors.Is(err, repository.ErrMatchNotFound), ShouldBeTrue)
			})
		})

		Convey("When creating a match against a missing team", func() {
			_, _, err := svc.CreateMatch(ctx, model.Match{
				Date: day, HomeTeamID: home.ID, AwayTeamID: 999, HomeScore: 1, AwayScore: 0,
			}, 0)

			Convey("Then it fails with missing participant and rolls back", func() {
				So(errors.Is(err, ledger.ErrMissingParticipant), ShouldBeTrue)
				matches, countErr := store.CountMatches(ctx)
				So(countErr, ShouldBeNil)
				So(matches, ShouldEqual, 0)
				ratings, countErr := store.CountRatings(ctx)
				So(countErr, ShouldBeNil)
				So(ratings, ShouldEqual, 0)
			})
		})
	})
}

func TestServiceRecompute(t *testing.T) {
	Convey("Given a service with ingested history", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := app.New(store)
		So(seedHistory(ctx, svc), ShouldBeNil)

		Convey("When the ledger is recomputed", func() {
			before, err := store.ListRatings(ctx)
			So(err, ShouldBeNil)

			processed, err := svc.RecomputeAll(ctx, 0)

			Convey("Then every match is replayed", func() {
				So(err, ShouldBeNil)
				So(processed, ShouldEqual, 4)
			})

			Convey("And the replay reproduces the incremental ledger", func() {
				So(err, ShouldBeNil)
				after, err := store.ListRatings(ctx)
				So(err, ShouldBeNil)
				So(shapeOf(after), ShouldResemble, shapeOf(before))
			})
		})

		Convey("When recompute runs twice in a row", func() {
			_, err := svc.RecomputeAll(ctx, 0)
			So(err, ShouldBeNil)
			first, err := store.ListRatings(ctx)
			So(err, ShouldBeNil)

			_, err = svc.RecomputeAll(ctx, 0)
			So(err, ShouldBeNil)
			second, err := store.ListRatings(ctx)
			So(err, ShouldBeNil)

			Convey("Then both runs produce identical entry sequences", func() {
				So(shapeOf(second), ShouldResemble, shapeOf(first))
			})
		})

		Convey("When recomputing with a different K factor", func() {
			processed, err := svc.RecomputeAll(ctx, 40)
			So(err, ShouldBeNil)
			So(processed, ShouldEqual, 4)

			Convey("Then the first entries move twice as far from default", func() {
				entries, err := store.ListRatings(ctx)
				So(err, ShouldBeNil)
				So(entries[0].Rating, ShouldEqual, 1020.0)
				So(entries[1].Rating, ShouldEqual, 980.0)
			})
		})
	})
}

// gatedStore blocks inside its first Transact until released, to hold the
// global run lock open from a test. Later transactions pass straight through.
type gatedStore struct {
	repository.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Transact(ctx context.Context, fn func(repository.Store) error) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Store.Transact(ctx, fn)
}

func TestServiceRunLock(t *testing.T) {
	Convey("Given a service whose store blocks mid-transaction", t, func() {
		ctx := context.Background()
		mem := repository.NewMemoryStore()
		gated := &gatedStore{
			Store:   mem,
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		svc := app.New(gated)

		done := make(chan error, 1)
		go func() {
			_, err := svc.RecomputeAll(ctx, 0)
			done <- err
		}()
		<-gated.entered

		Convey("When a second operation starts while the first is in flight", func() {
			_, ingestErr := svc.IngestBatch(ctx, []ingest.Row{
				{Date: "12/08/2023", HomeTeam: "A", AwayTeam: "B", HomeScore: "1", AwayScore: "0"},
			}, "Premier League")
			_, recomputeErr := svc.RecomputeAll(ctx, 0)

			close(gated.release)
			So(<-done, ShouldBeNil)

			Convey("Then both attempts are rejected immediately", func() {
				So(errors.Is(ingestErr, app.ErrOperationInFlight), ShouldBeTrue)
				So(errors.Is(recomputeErr, app.ErrOperationInFlight), ShouldBeTrue)
			})

			Convey("And the lock is free again afterwards", func() {
				_, err := svc.RecomputeAll(ctx, 0)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestServiceReads(t *testing.T) {
	Convey("Given a service with ingested history", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := app.New(store)
		So(seedHistory(ctx, svc), ShouldBeNil)

		Convey("When the leaderboard is read", func() {
			rows, err := svc.Leaderboard(ctx, 2)

			Convey("Then it is truncated and rating-descending", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0].Rating, ShouldBeGreaterThanOrEqualTo, rows[1].Rating)
			})
		})

		Convey("When top teams per league are read", func() {
			top, err := svc.TopTeamsByLeague(ctx)

			Convey("Then each league maps to its single best team", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 1)
				best := top["Premier League"]
				all, err := svc.Leaderboard(ctx, 0)
				So(err, ShouldBeNil)
				So(best.TeamID, ShouldEqual, all[0].TeamID)
			})
		})

		Convey("When a batch above the row cap is submitted", func() {
			small := app.New(store, app.WithMaxBatchRows(1))
			_, err := small.IngestBatch(ctx, []ingest.Row{
				{Date: "12/08/2023", HomeTeam: "A", AwayTeam: "B", HomeScore: "1", AwayScore: "0"},
				{Date: "13/08/2023", HomeTeam: "C", AwayTeam: "D", HomeScore: "1", AwayScore: "0"},
			}, "Premier League")

			Convey("Then it is rejected outright", func() {
				So(errors.Is(err, app.ErrBatchTooLarge), ShouldBeTrue)
			})
		})

		Convey("When stats are read", func() {
			stats := svc.GetStats()

			Convey("Then store totals are present", func() {
				So(stats["teams"], ShouldEqual, 4)
				So(stats["matches"], ShouldEqual, int64(4))
				So(stats["ratingEntries"], ShouldEqual, int64(8))
			})
		})
	})
}
