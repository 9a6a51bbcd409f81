package rating_test

import (
	"math"
	"testing"

	"github.com/okian/pitchledger/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExpected(t *testing.T) {
	Convey("Given the expected-score curve", t, func() {
		Convey("When both ratings are equal", func() {
			Convey("Then the expectation is a fair coin at any level", func() {
				for _, r := range []float64{0, 800, 1000, 1200, 2400} {
					So(rating.Expected(r, r), ShouldEqual, 0.5)
				}
			})
		})

		Convey("When one side is 400 points stronger", func() {
			e := rating.Expected(1400, 1000)

			Convey("Then it is expected to win ten times out of eleven", func() {
				So(e, ShouldAlmostEqual, 10.0/11.0, 1e-12)
			})
		})

		Convey("When called with either ordering", func() {
			a, b := 1321.5, 987.25

			Convey("Then the expectations are complementary", func() {
				So(rating.Expected(a, b)+rating.Expected(b, a), ShouldAlmostEqual, 1.0, 1e-12)
			})
		})

		Convey("When the rating gap is extreme", func() {
			e := rating.Expected(4000, -4000)

			Convey("Then the result stays finite and inside (0,1)", func() {
				So(math.IsNaN(e), ShouldBeFalse)
				So(math.IsInf(e, 0), ShouldBeFalse)
				So(e, ShouldBeGreaterThan, 0)
				So(e, ShouldBeLessThan, 1)
			})
		})
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given the Elo update rule", t, func() {
		Convey("When two fresh teams play and the home side wins", func() {
			home := rating.Update(rating.Default, rating.Default, 1, rating.DefaultK)
			away := rating.Update(rating.Default, rating.Default, 0, rating.DefaultK)

			Convey("Then the winner gains exactly what the loser drops", func() {
				So(home, ShouldEqual, 1010.0)
				So(away, ShouldEqual, 990.0)
			})
		})

		Convey("When a favourite draws against an underdog", func() {
			home := rating.Update(1200, 1000, 0.5, 20)
			away := rating.Update(1000, 1200, 0.5, 20)

			Convey("Then the favourite bleeds points to the underdog", func() {
				So(home, ShouldAlmostEqual, 1194.8, 0.05)
				So(away, ShouldAlmostEqual, 1005.2, 0.05)
			})
		})

		Convey("When the update is applied with complementary scores", func() {
			cases := []struct{ a, b, s, k float64 }{
				{1000, 1000, 1, 20},
				{1200, 1000, 0.5, 20},
				{875.5, 1431.25, 0, 32},
				{1000, 1000, 0.5, 10},
			}

			Convey("Then the deltas are exact negatives (zero-sum)", func() {
				for _, c := range cases {
					deltaA := rating.Update(c.a, c.b, c.s, c.k) - c.a
					deltaB := rating.Update(c.b, c.a, 1-c.s, c.k) - c.b
					So(deltaA, ShouldEqual, -deltaB)
				}
			})
		})

		Convey("When a custom K factor is supplied", func() {
			withK10 := rating.Update(1000, 1000, 1, 10)
			withK40 := rating.Update(1000, 1000, 1, 40)

			Convey("Then the movement scales linearly with K", func() {
				So(withK10, ShouldEqual, 1005.0)
				So(withK40, ShouldEqual, 1020.0)
			})
		})
	})
}
