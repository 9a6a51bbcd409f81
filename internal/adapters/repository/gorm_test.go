package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGormStoreSQLite(t *testing.T) {
	Convey("Given a fresh in-memory SQLite store", t, func() {
		ctx := context.Background()
		store, err := repository.OpenSQLite(ctx, ":memory:")
		So(err, ShouldBeNil)

		Convey("When a team is created", func() {
			team, err := store.CreateTeam(ctx, "Arsenal", "Premier League")
			So(err, ShouldBeNil)

			Convey("Then it round-trips through find-by-name", func() {
				got, err := store.FindTeamByName(ctx, "Arsenal")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, team.ID)
				So(got.League, ShouldEqual, "Premier League")
			})

			Convey("And an unknown name reports not found", func() {
				_, err := store.FindTeamByName(ctx, "Spurs")
				So(errors.Is(err, repository.ErrTeamNotFound), ShouldBeTrue)
			})
		})

		Convey("When the same match triple is inserted twice", func() {
			home, _ := store.CreateTeam(ctx, "Arsenal", "Premier League")
			away, _ := store.CreateTeam(ctx, "Chelsea", "Premier League")
			day := model.Date(2023, time.August, 12)

			_, err := store.CreateMatch(ctx, model.Match{
				Date: day, HomeTeamID: home.ID, AwayTeamID: away.ID, HomeScore: 2, AwayScore: 1,
			})
			So(err, ShouldBeNil)

			_, err = store.CreateMatch(ctx, model.Match{
				Date: day, HomeTeamID: home.ID, AwayTeamID: away.ID, HomeScore: 4, AwayScore: 4,
			})

			Convey("Then the schema-level unique key rejects the duplicate", func() {
				So(errors.Is(err, repository.ErrDuplicateMatch), ShouldBeTrue)
			})
		})

		Convey("When ratings accumulate for a team", func() {
			team, _ := store.CreateTeam(ctx, "Arsenal", "Premier League")
			aug := model.Date(2023, time.August, 12)
			sep := model.Date(2023, time.September, 2)

			So(store.AppendRatings(ctx,
				model.RatingEntry{TeamID: team.ID, Date: aug, Rating: 1010},
				model.RatingEntry{TeamID: team.ID, Date: sep, Rating: 1019.3},
			), ShouldBeNil)

			Convey("Then the latest rating is the max-date entry", func() {
				r, err := store.LatestRating(ctx, team.ID)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 1019.3)
			})

			Convey("And same-date ties break by insertion order", func() {
				So(store.AppendRatings(ctx, model.RatingEntry{TeamID: team.ID, Date: sep, Rating: 1025.0}), ShouldBeNil)
				r, err := store.LatestRating(ctx, team.ID)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 1025.0)
			})

			Convey("And a team with no entries gets the default", func() {
				other, _ := store.CreateTeam(ctx, "Chelsea", "Premier League")
				r, err := store.LatestRating(ctx, other.ID)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, rating.Default)
			})

			Convey("And wiping deletes every entry", func() {
				So(store.WipeRatings(ctx), ShouldBeNil)
				count, err := store.CountRatings(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 0)
			})
		})

		Convey("When a transaction callback returns an error", func() {
			team, _ := store.CreateTeam(ctx, "Arsenal", "Premier League")
			boom := errors.New("constraint blew up")

			err := store.Transact(ctx, func(tx repository.Store) error {
				if err := tx.AppendRatings(ctx, model.RatingEntry{
					TeamID: team.ID, Date: model.Date(2023, time.August, 12), Rating: 1010,
				}); err != nil {
					return err
				}
				return boom
			})

			Convey("Then the write is rolled back", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				count, err := store.CountRatings(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 0)
			})
		})

		Convey("When current ratings are queried", func() {
			a, _ := store.CreateTeam(ctx, "Arsenal", "Premier League")
			b, _ := store.CreateTeam(ctx, "Bayern", "Bundesliga")
			day := model.Date(2023, time.August, 12)
			later := model.Date(2023, time.August, 19)
			So(store.AppendRatings(ctx,
				model.RatingEntry{TeamID: a.ID, Date: day, Rating: 1010},
				model.RatingEntry{TeamID: a.ID, Date: later, Rating: 995},
				model.RatingEntry{TeamID: b.ID, Date: day, Rating: 1005},
			), ShouldBeNil)

			rows, err := store.CurrentRatings(ctx)
			So(err, ShouldBeNil)

			Convey("Then each team appears once with its newest rating", func() {
				So(len(rows), ShouldEqual, 2)
				So(rows[0].Name, ShouldEqual, "Bayern")
				So(rows[0].Rating, ShouldEqual, 1005)
				So(rows[1].Name, ShouldEqual, "Arsenal")
				So(rows[1].Rating, ShouldEqual, 995)
			})
		})
	})
}
