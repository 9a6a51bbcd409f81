package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/ingest"
	"github.com/okian/pitchledger/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func fixtureRows() []ingest.Row {
	return []ingest.Row{
		{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "2", AwayScore: "1"},
		{Date: "12/08/2023", HomeTeam: "Liverpool", AwayTeam: "Everton", HomeScore: "1", AwayScore: "1"},
		{Date: "19/08/2023", HomeTeam: "Chelsea", AwayTeam: "Arsenal", HomeScore: "0", AwayScore: "3"},
	}
}

func TestPipelineRun(t *testing.T) {
	Convey("Given a pipeline over an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		pipe := ingest.New(store)

		Convey("When a clean batch is ingested", func() {
			report, err := pipe.Run(ctx, fixtureRows(), "Premier League")

			Convey("Then every row is added and nothing is skipped", func() {
				So(err, ShouldBeNil)
				So(report.Added, ShouldEqual, 3)
				So(report.Skipped, ShouldBeEmpty)
				So(report.RunID, ShouldNotBeBlank)
			})

			Convey("And teams were created lazily with the batch league", func() {
				So(err, ShouldBeNil)
				team, err := store.FindTeamByName(ctx, "Arsenal")
				So(err, ShouldBeNil)
				So(team.League, ShouldEqual, "Premier League")
			})

			Convey("And two rating entries exist per match", func() {
				So(err, ShouldBeNil)
				count, err := store.CountRatings(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 6)
			})

			Convey("And ratings chain within the batch", func() {
				So(err, ShouldBeNil)
				arsenal, _ := store.FindTeamByName(ctx, "Arsenal")
				r, err := store.LatestRating(ctx, arsenal.ID)
				So(err, ShouldBeNil)
				// Won 2-1 from 1000 (=1010), then won 3-0 away against the
				// team it already beat, so it must sit above 1010.
				So(r, ShouldBeGreaterThan, 1010.0)
			})
		})

		Convey("When the identical batch is ingested twice", func() {
			first, err := pipe.Run(ctx, fixtureRows(), "Premier League")
			So(err, ShouldBeNil)
			second, err := pipe.Run(ctx, fixtureRows(), "Premier League")

			Convey("Then the rerun adds nothing and reports every row as duplicate", func() {
				So(err, ShouldBeNil)
				So(first.Added, ShouldEqual, 3)
				So(second.Added, ShouldEqual, 0)
				So(second.SkipCount(ingest.ReasonDuplicateMatch), ShouldEqual, 3)
			})

			Convey("And the ledger did not grow", func() {
				So(err, ShouldBeNil)
				count, err := store.CountRatings(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 6)
			})
		})

		Convey("When a batch repeats a match key internally", func() {
			rows := []ingest.Row{
				{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "2", AwayScore: "1"},
				{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "5", AwayScore: "5"},
			}
			report, err := pipe.Run(ctx, rows, "Premier League")

			Convey("Then only the first occurrence is staged, even with new scores", func() {
				So(err, ShouldBeNil)
				So(report.Added, ShouldEqual, 1)
				So(report.SkipCount(ingest.ReasonDuplicateMatch), ShouldEqual, 1)
			})
		})

		Convey("When one row in ten is malformed", func() {
			rows := make([]ingest.Row, 0, 10)
			for i := 0; i < 10; i++ {
				home := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}[i]
				rows = append(rows, ingest.Row{
					Date: "12/08/2023", HomeTeam: home, AwayTeam: home + "2",
					HomeScore: "1", AwayScore: "0",
				})
			}
			rows[4].HomeTeam = "   " // blank name after trimming

			report, err := pipe.Run(ctx, rows, "Premier League")

			Convey("Then nine rows land and one invalid-row skip is reported", func() {
				So(err, ShouldBeNil)
				So(report.Added, ShouldEqual, 9)
				So(report.SkipCount(ingest.ReasonInvalidRow), ShouldEqual, 1)
				So(report.Skipped[0].Row, ShouldEqual, 4)
			})

			Convey("And the other rows' ratings are unaffected", func() {
				So(err, ShouldBeNil)
				count, err := store.CountRatings(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 18)
			})
		})

		Convey("When rows carry assorted defects", func() {
			rows := []ingest.Row{
				{Date: "not a date", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "1", AwayScore: "0"},
				{Date: "12/08/2023", HomeTeam: "nan", AwayTeam: "Chelsea", HomeScore: "1", AwayScore: "0"},
				{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "-1", AwayScore: "0"},
				{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "", AwayScore: "0"},
				{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "2.5", AwayScore: "0"},
			}
			report, err := pipe.Run(ctx, rows, "Premier League")

			Convey("Then every defective row is skipped as invalid", func() {
				So(err, ShouldBeNil)
				So(report.Added, ShouldEqual, 0)
				So(report.SkipCount(ingest.ReasonInvalidRow), ShouldEqual, 5)
			})
		})

		Convey("When scores arrive in float form", func() {
			rows := []ingest.Row{
				{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "2.0", AwayScore: "1.0"},
			}
			report, err := pipe.Run(ctx, rows, "Premier League")

			Convey("Then they are accepted as integers", func() {
				So(err, ShouldBeNil)
				So(report.Added, ShouldEqual, 1)
			})
		})

		Convey("When a team reappears under a new league", func() {
			_, err := pipe.Run(ctx, fixtureRows(), "Premier League")
			So(err, ShouldBeNil)

			rows := []ingest.Row{
				{Date: "26/08/2023", HomeTeam: "Arsenal", AwayTeam: "Bayern", HomeScore: "1", AwayScore: "2"},
			}
			_, err = pipe.Run(ctx, rows, "Champions League")

			Convey("Then the league label drifts to the latest sighting", func() {
				So(err, ShouldBeNil)
				team, err := store.FindTeamByName(ctx, "Arsenal")
				So(err, ShouldBeNil)
				So(team.League, ShouldEqual, "Champions League")
			})
		})

		Convey("When persistence fails at commit time", func() {
			boom := errors.New("disk full")
			store.FailAppendsWith(boom)
			report, err := pipe.Run(ctx, fixtureRows(), "Premier League")

			Convey("Then the batch aborts with no partial commit", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(report.Added, ShouldEqual, 0)
				matches, countErr := store.CountMatches(ctx)
				So(countErr, ShouldBeNil)
				So(matches, ShouldEqual, 0)
				ratings, countErr := store.CountRatings(ctx)
				So(countErr, ShouldBeNil)
				So(ratings, ShouldEqual, 0)
			})

			Convey("And re-running after recovery ingests the full batch", func() {
				So(err, ShouldNotBeNil)
				store.FailAppendsWith(nil)
				retry, err := pipe.Run(ctx, fixtureRows(), "Premier League")
				So(err, ShouldBeNil)
				So(retry.Added, ShouldEqual, 3)
			})
		})

		Convey("When a custom K factor is configured", func() {
			strong := ingest.New(store, ingest.WithKFactor(40))
			rows := []ingest.Row{
				{Date: "12/08/2023", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: "2", AwayScore: "1"},
			}
			_, err := strong.Run(ctx, rows, "Premier League")

			Convey("Then the update moves twice as far", func() {
				So(err, ShouldBeNil)
				team, _ := store.FindTeamByName(ctx, "Arsenal")
				r, err := store.LatestRating(ctx, team.ID)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 1020.0)
			})
		})
	})
}
