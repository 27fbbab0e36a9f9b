package matchmaking_test

import (
	"testing"

	mm "github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkillScore(t *testing.T) {
	Convey("Given team and request skill levels", t, func() {
		Convey("When both are the same level", func() {
			Convey("Then the score should be 100", func() {
				So(mm.SkillScore(types.SkillAdvanced, types.SkillAdvanced), ShouldEqual, 100.0)
				So(mm.SkillScore(types.SkillBeginner, types.SkillBeginner), ShouldEqual, 100.0)
			})
		})

		Convey("When they are one level apart", func() {
			Convey("Then the score should stay forgiving", func() {
				score := mm.SkillScore(types.SkillIntermediate, types.SkillAdvanced)
				So(score, ShouldBeBetweenOrEqual, 60.0, 75.0)
				So(score, ShouldAlmostEqual, 200.0/3, 1e-9)
			})
		})

		Convey("When they are two levels apart", func() {
			Convey("Then the extra gap penalty should apply", func() {
				score := mm.SkillScore(types.SkillBeginner, types.SkillAdvanced)
				So(score, ShouldBeBetweenOrEqual, 10.0, 25.0)
				So(score, ShouldAlmostEqual, 100.0/6, 1e-9)
			})
		})

		Convey("When they are three levels apart", func() {
			Convey("Then the score should collapse to zero", func() {
				So(mm.SkillScore(types.SkillExpert, types.SkillBeginner), ShouldBeBetweenOrEqual, 0.0, 5.0)
			})
		})

		Convey("When the request is unranked", func() {
			Convey("Then the score should be a flat 50 for any team", func() {
				for _, level := range []types.SkillLevel{types.SkillBeginner, types.SkillExpert, types.SkillAny, ""} {
					So(mm.SkillScore(level, types.SkillUnranked), ShouldEqual, 50.0)
				}
			})
		})

		Convey("When a level is unknown", func() {
			Convey("Then it should be compared as intermediate", func() {
				So(mm.SkillScore("mystery", types.SkillIntermediate), ShouldEqual, 100.0)
				So(mm.SkillScore(types.SkillAny, types.SkillAdvanced), ShouldAlmostEqual, 200.0/3, 1e-9)
			})
		})
	})
}

func TestCompositionScore(t *testing.T) {
	Convey("Given a team's desired roles and a player's roles", t, func() {
		Convey("When the team has no role requirements", func() {
			Convey("Then the score should be 0.80", func() {
				So(mm.CompositionScore(map[string]int{}, types.NewSet("tank")), ShouldEqual, 0.80)
				So(mm.CompositionScore(nil, nil), ShouldEqual, 0.80)
			})
		})

		Convey("When the player lists no roles", func() {
			Convey("Then the score should be 0.70", func() {
				So(mm.CompositionScore(map[string]int{"tank": 1}, nil), ShouldEqual, 0.70)
			})
		})

		Convey("When the player covers every needed role", func() {
			Convey("Then the score should be exactly 1", func() {
				desired := map[string]int{"tank": 1, "healer": 2}
				So(mm.CompositionScore(desired, types.NewSet("healer", "tank", "dps")), ShouldEqual, 1.0)
			})
		})

		Convey("When the player covers half of the needed roles", func() {
			Convey("Then the score should sit on the partial-fill ramp", func() {
				desired := map[string]int{"tank": 1, "healer": 1}
				So(mm.CompositionScore(desired, types.NewSet("Tank")), ShouldAlmostEqual, 0.825, 1e-9)
			})
		})

		Convey("When there is no overlap but the player is broadly flexible", func() {
			Convey("Then the score should be 0.60", func() {
				desired := map[string]int{"sniper": 1}
				So(mm.CompositionScore(desired, types.NewSet("tank", "healer", "dps")), ShouldEqual, 0.60)
			})
		})

		Convey("When there is no overlap and few roles", func() {
			Convey("Then the score should hit the 0.30 floor", func() {
				desired := map[string]int{"sniper": 1}
				So(mm.CompositionScore(desired, types.NewSet("tank")), ShouldEqual, 0.30)
			})
		})
	})
}

func TestRegionScore(t *testing.T) {
	regions := []string{mm.RegionNA, mm.RegionSA, mm.RegionEU, mm.RegionAsia, mm.RegionOceania, mm.RegionAfrica}

	Convey("Given the region proximity table", t, func() {
		Convey("Then proximity should be symmetric and 1 on the diagonal", func() {
			for _, a := range regions {
				So(mm.RegionProximity(a, a), ShouldEqual, 1.0)
				for _, b := range regions {
					So(mm.RegionProximity(a, b), ShouldEqual, mm.RegionProximity(b, a))
					So(mm.RegionProximity(a, b), ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})

		Convey("Then known pairs should match the table", func() {
			So(mm.RegionProximity("NA", "EU"), ShouldEqual, 0.50)
			So(mm.RegionProximity("NA", "SA"), ShouldEqual, 0.60)
			So(mm.RegionProximity("ASIA", "OCEANIA"), ShouldEqual, 0.60)
			So(mm.RegionProximity("EU", "OCEANIA"), ShouldEqual, 0.30)
			So(mm.RegionProximity("SA", "AFRICA"), ShouldEqual, 0.45)
		})

		Convey("Then unknown regions should default to 0.30", func() {
			So(mm.RegionProximity("NA", "MARS"), ShouldEqual, 0.30)
		})

		Convey("Then aliases and casing should resolve", func() {
			So(mm.RegionProximity("us", "NA"), ShouldEqual, 1.0)
			So(mm.RegionProximity("oce", "asia"), ShouldEqual, 0.60)
		})
	})

	Convey("Given a team region and preferred regions", t, func() {
		Convey("When either side is missing", func() {
			Convey("Then the score should be neutral", func() {
				So(mm.RegionScore("", types.NewSet("EU")), ShouldEqual, 0.70)
				So(mm.RegionScore("EU", nil), ShouldEqual, 0.70)
			})
		})

		Convey("When the player lists several regions", func() {
			Convey("Then the closest one should count", func() {
				So(mm.RegionScore("EU", types.NewSet("NA", "AFRICA")), ShouldEqual, 0.60)
				So(mm.RegionScore("EU", types.NewSet("NA", "eu")), ShouldEqual, 1.0)
			})
		})
	})
}

func TestScheduleScore(t *testing.T) {
	Convey("Given availability and activity times", t, func() {
		Convey("When either side is empty", func() {
			Convey("Then the score should be 0.70", func() {
				So(mm.ScheduleScore(nil, types.NewSet("evening")), ShouldEqual, 0.70)
				So(mm.ScheduleScore(types.NewSet("evening"), types.NewSet()), ShouldEqual, 0.70)
			})
		})

		Convey("When the schedules are identical", func() {
			Convey("Then the score should be 1", func() {
				s := types.NewSet("evening", "night")
				So(mm.ScheduleScore(s, s), ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When the schedules do not overlap", func() {
			Convey("Then the score should be neutral rather than penalized", func() {
				So(mm.ScheduleScore(types.NewSet("morning"), types.NewSet("night")), ShouldEqual, 0.50)
			})
		})

		Convey("When the schedules partially overlap", func() {
			Convey("Then the banded curve should apply", func() {
				all := types.NewSet("a", "b", "c", "d")
				So(mm.ScheduleScore(types.NewSet("a", "b"), all), ShouldAlmostEqual, 0.75, 1e-9)
				So(mm.ScheduleScore(types.NewSet("a"), all), ShouldAlmostEqual, 0.55, 1e-9)
				ten := types.NewSet("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
				So(mm.ScheduleScore(types.NewSet("a"), ten), ShouldAlmostEqual, 0.40, 1e-9)
			})
		})
	})
}

func TestLanguageScore(t *testing.T) {
	Convey("Given player and team languages", t, func() {
		Convey("When the player lists none", func() {
			So(mm.LanguageScore(nil, types.NewSet("de")), ShouldEqual, 0.70)
		})

		Convey("When the languages overlap", func() {
			So(mm.LanguageScore(types.NewSet("en", "de"), types.NewSet("de")), ShouldAlmostEqual, 0.75, 1e-9)
		})

		Convey("When there is no overlap but English is present", func() {
			So(mm.LanguageScore(types.NewSet("fr"), types.NewSet("en")), ShouldEqual, 0.60)
			So(mm.LanguageScore(types.NewSet("English"), types.NewSet("pt")), ShouldEqual, 0.60)
		})

		Convey("When there is no overlap and no English", func() {
			So(mm.LanguageScore(types.NewSet("fr"), types.NewSet("de")), ShouldEqual, 0.30)
		})
	})
}
