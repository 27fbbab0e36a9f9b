package skillcalc

import (
	"math"
	"testing"

	"github.com/okian/affinity/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFallback(t *testing.T) {
	Convey("Given 200 hours of playtime and 35% achievements", t, func() {
		est := Fallback(200, 35)

		Convey("Then the score should be 26.0 and beginner", func() {
			So(est.Playtime, ShouldEqual, 12.0)
			So(est.Achievement, ShouldEqual, 14.0)
			So(est.Score, ShouldEqual, 26.0)
			So(est.Level, ShouldEqual, types.SkillBeginner)
		})
	})

	Convey("Given playtime beyond the cap", t, func() {
		est := Fallback(5000, 100)

		Convey("Then the score should saturate at 100", func() {
			So(est.Score, ShouldEqual, 100.0)
			So(est.Level, ShouldEqual, types.SkillExpert)
		})
	})

	Convey("Given garbage inputs", t, func() {
		Convey("Then the estimate should stay in range", func() {
			for _, in := range [][2]float64{{-10, -10}, {math.NaN(), 250}, {math.Inf(1), math.NaN()}} {
				est := Fallback(in[0], in[1])
				So(est.Score, ShouldBeBetweenOrEqual, 0.0, 100.0)
			}
		})
	})
}

func TestLevelFor(t *testing.T) {
	Convey("Given scores at the tier boundaries", t, func() {
		So(LevelFor(29.9), ShouldEqual, types.SkillBeginner)
		So(LevelFor(30), ShouldEqual, types.SkillIntermediate)
		So(LevelFor(50), ShouldEqual, types.SkillAdvanced)
		So(LevelFor(75), ShouldEqual, types.SkillExpert)
	})
}
