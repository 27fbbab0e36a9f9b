package recommend_test

import (
	"testing"

	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTemporalScore(t *testing.T) {
	Convey("Given a profile with no temporal data", t, func() {
		profile := recommend.Profile{}

		Convey("Then the temporal score should be neutral for any server", func() {
			for _, tags := range []types.Set{nil, types.NewSet("morning"), types.NewSet("night", "weekend")} {
				score := recommend.TemporalScore(profile, recommend.Server{ActivityTags: tags})
				So(score, ShouldAlmostEqual, 50.0, 5.0)
			}
		})

		Convey("And an unknown pattern should count as no data", func() {
			profile.ActivityPattern = recommend.PatternUnknown
			So(recommend.TemporalScore(profile, recommend.Server{ActivityTags: types.NewSet("evening")}), ShouldEqual, 50.0)
		})
	})

	Convey("Given a profile with data and a server without tags", t, func() {
		profile := recommend.Profile{ActivityPattern: recommend.PatternEvening}

		Convey("Then the score should be 60", func() {
			So(recommend.TemporalScore(profile, recommend.Server{}), ShouldEqual, 60.0)
		})
	})

	Convey("Given only an activity pattern", t, func() {
		profile := recommend.Profile{ActivityPattern: "Evening"}
		server := recommend.Server{ActivityTags: types.NewSet("evening", "night")}

		Convey("Then the score should be the pattern match alone", func() {
			So(recommend.TemporalScore(profile, server), ShouldEqual, 90.0)
		})
	})

	Convey("Given only peak hours", t, func() {
		profile := recommend.Profile{PeakHours: []int{18, 19, 20, 21, 22}}

		Convey("Then a server covering exactly those hours should score 100", func() {
			server := recommend.Server{ActivityTags: types.NewSet("evening")}
			So(recommend.TemporalScore(profile, server), ShouldAlmostEqual, 100.0, 1e-9)
		})
	})

	Convey("Given pattern, peak hours and peak days", t, func() {
		profile := recommend.Profile{
			ActivityPattern: recommend.PatternEvening,
			PeakHours:       []int{18, 19, 20, 21, 22},
			PeakDays:        types.NewSet("saturday", "sunday"),
		}
		server := recommend.Server{ActivityTags: types.NewSet("evening", "night")}

		Convey("Then the sub-scores should be blended", func() {
			// pattern 90, hours 20+5/10*80=60, weekend 90
			expected := 90*0.50 + 60*0.35 + 90*0.15
			So(recommend.TemporalScore(profile, server), ShouldAlmostEqual, expected, 1e-9)
		})
	})
}

func TestPatternMatchScore(t *testing.T) {
	Convey("Given server tags and a pattern", t, func() {
		Convey("When the primary tag and every secondary tag match", func() {
			tags := types.NewSet("morning", "afternoon", "evening", "night")

			Convey("Then the bonus should be capped at 15", func() {
				So(recommend.PatternMatchScore(recommend.PatternVaried, tags), ShouldEqual, 100.0)
			})
		})

		Convey("When only the primary tag matches", func() {
			So(recommend.PatternMatchScore(recommend.PatternEvening, types.NewSet("evening")), ShouldEqual, 85.0)
		})

		Convey("When only secondary tags match", func() {
			score := recommend.PatternMatchScore(recommend.PatternWeekend, types.NewSet("evening"))

			Convey("Then it should scale with the secondary ratio", func() {
				So(score, ShouldEqual, 72.5)
			})
		})

		Convey("When nothing matches directly", func() {
			Convey("Then the adjacency fallback should apply", func() {
				So(recommend.PatternMatchScore(recommend.PatternMorning, types.NewSet("evening")), ShouldEqual, 50.0)
				So(recommend.PatternMatchScore(recommend.PatternMorning, types.NewSet("night")), ShouldEqual, 25.0)
			})
		})
	})
}

func TestAdjacencyScore(t *testing.T) {
	Convey("Given user tags with neighbours on the server", t, func() {
		So(recommend.AdjacencyScore([]string{"morning"}, types.NewSet("afternoon")), ShouldEqual, 60.0)
		So(recommend.AdjacencyScore([]string{"weekend", "night"}, types.NewSet("afternoon")), ShouldEqual, 50.0)
	})

	Convey("Given no neighbours", t, func() {
		So(recommend.AdjacencyScore([]string{"night"}, types.NewSet("morning")), ShouldEqual, 25.0)
		So(recommend.AdjacencyScore(nil, types.NewSet("morning")), ShouldEqual, 25.0)
	})
}

func TestPeakHoursScore(t *testing.T) {
	Convey("Given peak hours", t, func() {
		Convey("When there are none", func() {
			So(recommend.PeakHoursScore(nil, types.NewSet("evening")), ShouldEqual, 50.0)
			So(recommend.PeakHoursScore([]int{-1, 24}, types.NewSet("evening")), ShouldEqual, 50.0)
		})

		Convey("When they do not overlap the server hours", func() {
			So(recommend.PeakHoursScore([]int{19, 20}, types.NewSet("night")), ShouldEqual, 20.0)
		})

		Convey("When night wraps past midnight", func() {
			score := recommend.PeakHoursScore([]int{23, 0, 1, 2, 3}, types.NewSet("night"))
			So(score, ShouldAlmostEqual, 100.0, 1e-9)
		})
	})
}

func TestWeekendPreferenceScore(t *testing.T) {
	Convey("Given peak days", t, func() {
		So(recommend.WeekendPreferenceScore(types.NewSet("Saturday", "sunday")), ShouldEqual, 90.0)
		So(recommend.WeekendPreferenceScore(types.NewSet("friday", "monday")), ShouldEqual, 70.0)
		So(recommend.WeekendPreferenceScore(types.NewSet("monday", "tuesday", "wednesday")), ShouldEqual, 35.0)
		So(recommend.WeekendPreferenceScore(nil), ShouldEqual, 35.0)
	})
}
