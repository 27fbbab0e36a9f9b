package types_test

import (
	"testing"

	"github.com/goccy/go-json"
	types "github.com/okian/affinity/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkillLevel(t *testing.T) {
	Convey("Given skill levels", t, func() {
		Convey("When mapping the ranked tiers", func() {
			Convey("Then they should map onto 1..4", func() {
				So(types.SkillBeginner.Value(), ShouldEqual, 1)
				So(types.SkillIntermediate.Value(), ShouldEqual, 2)
				So(types.SkillAdvanced.Value(), ShouldEqual, 3)
				So(types.SkillExpert.Value(), ShouldEqual, 4)
			})
		})

		Convey("When mapping unknown or neutral levels", func() {
			Convey("Then they should default to intermediate", func() {
				So(types.SkillAny.Value(), ShouldEqual, 2)
				So(types.SkillUnranked.Value(), ShouldEqual, 2)
				So(types.SkillLevel("").Value(), ShouldEqual, 2)
				So(types.SkillLevel("grandmaster").Value(), ShouldEqual, 2)
			})
		})

		Convey("When the level has odd casing and whitespace", func() {
			level := types.SkillLevel("  EXPERT ")

			Convey("Then it should still be recognised", func() {
				So(level.Value(), ShouldEqual, 4)
				So(level.IsRanked(), ShouldBeTrue)
				So(types.SkillLevel("Unranked").IsUnranked(), ShouldBeTrue)
			})
		})
	})
}

func TestSet(t *testing.T) {
	Convey("Given a set built from labels", t, func() {
		s := types.NewSet("Tank", "healer", " tank ", "")

		Convey("Then labels should be normalized and deduplicated", func() {
			So(s.Len(), ShouldEqual, 2)
			So(s.Has("TANK"), ShouldBeTrue)
			So(s.Has("healer"), ShouldBeTrue)
			So(s.Sorted(), ShouldResemble, []string{"healer", "tank"})
		})

		Convey("When intersecting and unioning with another set", func() {
			other := types.NewSet("tank", "dps")

			Convey("Then the results should match set algebra", func() {
				So(s.Intersect(other).Sorted(), ShouldResemble, []string{"tank"})
				So(s.Union(other).Sorted(), ShouldResemble, []string{"dps", "healer", "tank"})
			})
		})

		Convey("When round-tripping through JSON", func() {
			data, err := json.Marshal(s)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `["healer","tank"]`)

			var decoded types.Set
			So(json.Unmarshal([]byte(`["EN","en","de"]`), &decoded), ShouldBeNil)

			Convey("Then duplicates should collapse", func() {
				So(decoded.Sorted(), ShouldResemble, []string{"de", "en"})
			})
		})
	})

	Convey("Given a nil set", t, func() {
		var s types.Set

		Convey("Then reads should be safe", func() {
			So(s.Len(), ShouldEqual, 0)
			So(s.Has("x"), ShouldBeFalse)
			So(s.Intersect(types.NewSet("x")).Len(), ShouldEqual, 0)
		})
	})
}
