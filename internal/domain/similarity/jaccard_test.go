package similarity_test

import (
	"testing"

	"github.com/okian/affinity/internal/domain/similarity"
	"github.com/okian/affinity/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJaccard(t *testing.T) {
	Convey("Given two label sets", t, func() {
		Convey("When the sets are identical and non-empty", func() {
			a := types.NewSet("en", "de", "fr")

			Convey("Then similarity should be exactly 1", func() {
				So(similarity.Jaccard(a, types.NewSet("fr", "de", "en")), ShouldEqual, 1.0)
			})
		})

		Convey("When the sets are disjoint", func() {
			Convey("Then similarity should be exactly 0", func() {
				So(similarity.Jaccard(types.NewSet("a", "b"), types.NewSet("c")), ShouldEqual, 0.0)
			})
		})

		Convey("When either set is empty", func() {
			Convey("Then similarity should be 0, including both empty", func() {
				So(similarity.Jaccard(types.NewSet(), types.NewSet("a")), ShouldEqual, 0.0)
				So(similarity.Jaccard(types.NewSet("a"), nil), ShouldEqual, 0.0)
				So(similarity.Jaccard(nil, nil), ShouldEqual, 0.0)
			})
		})

		Convey("When the sets partially overlap", func() {
			a := types.NewSet("tank", "healer", "dps")
			b := types.NewSet("healer", "support")

			Convey("Then similarity should be intersection over union", func() {
				So(similarity.Jaccard(a, b), ShouldAlmostEqual, 0.25)
			})
		})
	})
}

func TestJaccardProperties(t *testing.T) {
	Convey("Given a grid of label sets", t, func() {
		sets := [][]string{
			{},
			{"a"},
			{"a", "b"},
			{"b", "c", "d"},
			{"a", "b", "c", "d", "e"},
			{"x", "y"},
			{"A", " b "},
		}

		Convey("Then similarity should be symmetric and bounded for every pair", func() {
			for _, a := range sets {
				for _, b := range sets {
					ab := similarity.JaccardLabels(a, b)
					ba := similarity.JaccardLabels(b, a)
					So(ab, ShouldEqual, ba)
					So(ab, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})
	})
}
