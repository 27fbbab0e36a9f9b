package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/affinity/internal/adapters/cache"
	"github.com/okian/affinity/internal/adapters/repository"
	service "github.com/okian/affinity/internal/app"
	"github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/internal/domain/types"
	"github.com/okian/affinity/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func perfectPair() (matchmaking.Team, matchmaking.Request) {
	team := matchmaking.Team{
		ID:              "team-1",
		SkillLevel:      types.SkillAdvanced,
		DesiredRoles:    map[string]int{"tank": 1},
		PreferredRegion: "EU",
		ActivityTimes:   types.NewSet("evening"),
		Languages:       types.NewSet("en"),
	}
	req := matchmaking.Request{
		SkillLevel:        types.SkillAdvanced,
		PreferredRoles:    types.NewSet("tank"),
		PreferredRegions:  types.NewSet("EU"),
		AvailabilityHours: types.NewSet("evening"),
		Languages:         types.NewSet("en"),
	}
	return team, req
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should report its configuration without being started", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["defaultStrategy"], ShouldEqual, "hybrid")
			So(stats["matchWeights"], ShouldResemble, matchmaking.DefaultWeights())
			So(stats["cacheEnabled"], ShouldEqual, false)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(3),
			service.WithQueueSize(64),
			service.WithDedupeSize(32),
			service.WithShardCount(2),
			service.WithMaxBoardSize(10),
			service.WithDefaultStrategy(recommend.StrategyTemporal),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 3)
			So(stats["queueSize"], ShouldEqual, 64)
			So(stats["maxBoardSize"], ShouldEqual, 10)
			So(stats["defaultStrategy"], ShouldEqual, "temporal")
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))

		Convey("When reading a board before Start", func() {
			_, err := svc.Board(ctx, "u1", 10)

			Convey("Then it should fail with ErrNotStarted", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When submitting a job before Start", func() {
			accepted, duplicate, _ := svc.SubmitJob(ctx, model.Job{UserID: "u1"})

			Convey("Then it should be rejected", func() {
				So(accepted, ShouldBeFalse)
				So(duplicate, ShouldBeFalse)
			})
		})

		Convey("When started and stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_Compatibility(t *testing.T) {
	Convey("Given a service with a memory cache", t, func() {
		ctx := context.Background()
		mem := cache.NewMemory(ctx, 0)
		svc := service.New(service.WithCache(mem), service.WithCacheTTL(time.Minute))
		team, req := perfectPair()

		Convey("When a perfect pair is scored twice", func() {
			first, err1 := svc.Compatibility(ctx, team, req, nil)
			second, err2 := svc.Compatibility(ctx, team, req, nil)

			Convey("Then both calls should agree and the result be cached once", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.TotalScore, ShouldEqual, 100)
				So(second, ShouldResemble, first)
				So(mem.Len(), ShouldEqual, 1)
			})
		})

		Convey("When an override weight set is supplied", func() {
			w := matchmaking.Weights{Skill: 1}
			res, err := svc.Compatibility(ctx, team, req, &w)

			Convey("Then it should be cached under its own key", func() {
				So(err, ShouldBeNil)
				So(res.TotalScore, ShouldEqual, 100)
				_, _ = svc.Compatibility(ctx, team, req, nil)
				So(mem.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the override weights do not sum to 1", func() {
			w := matchmaking.Weights{Skill: 0.5}
			_, err := svc.Compatibility(ctx, team, req, &w)

			Convey("Then it should fail with ErrInvalidWeights", func() {
				So(errors.Is(err, service.ErrInvalidWeights), ShouldBeTrue)
				So(mem.Len(), ShouldEqual, 0)
			})
		})

		Convey("When ranking teams", func() {
			weak := matchmaking.Team{ID: "team-0", SkillLevel: types.SkillBeginner, PreferredRegion: "OCEANIA"}
			results, err := svc.RankTeams(ctx, req, []matchmaking.Team{weak, team}, nil)

			Convey("Then the better team should come first", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)
				So(results[0].TeamID, ShouldEqual, "team-1")
			})
		})
	})
}

func TestService_Helpers(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("Then similarity should follow Jaccard", func() {
			So(svc.Similarity(ctx, []string{"a", "b"}, []string{"B", "c"}), ShouldAlmostEqual, 1.0/3.0)
			So(svc.Similarity(ctx, nil, []string{"a"}), ShouldEqual, 0)
		})

		Convey("Then the fallback skill estimate should be derived", func() {
			est := svc.SkillEstimate(ctx, 200, 35)
			So(est.Score, ShouldEqual, 26.0)
			So(est.Level, ShouldEqual, types.SkillBeginner)
		})

		Convey("Then recommendations should use the default strategy", func() {
			res, err := svc.Recommend(ctx, recommend.Profile{}, recommend.Server{ID: "s1"}, "")
			So(err, ShouldBeNil)
			So(res.Strategy, ShouldEqual, recommend.StrategyHybrid)
			So(res.FinalScore, ShouldEqual, 44.75)
		})
	})
}

func TestService_Jobs(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(100), service.WithMaxBoardSize(3))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When jobs for five servers are submitted", func() {
			for i := 0; i < 5; i++ {
				score := float64(50 + i*10)
				accepted, duplicate, _ := svc.SubmitJob(ctx, model.Job{
					JobID:    fmt.Sprintf("job-%d", i),
					UserID:   "u1",
					Strategy: recommend.StrategyContentBased,
					Server:   recommend.Server{ID: fmt.Sprintf("srv-%d", i), Signals: recommend.Signals{ContentBased: &score}},
				})
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeFalse)
			}

			Convey("Then the board should keep the best three", func() {
				So(eventually(func() bool { return svc.GetStats()["jobsProcessed"] == int64(5) }), ShouldBeTrue)
				top, err := svc.Board(ctx, "u1", 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].ServerID, ShouldEqual, "srv-4")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[0].Strategy, ShouldEqual, "content_based")

				entry, err := svc.BoardRank(ctx, "u1", "srv-3")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)

				_, err = svc.BoardRank(ctx, "u1", "srv-0")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then resubmitting a job id should be reported as a duplicate", func() {
				accepted, duplicate, id := svc.SubmitJob(ctx, model.Job{JobID: "job-1", UserID: "u1"})
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeTrue)
				So(id, ShouldEqual, "job-1")
			})
		})

		Convey("When a job has no id", func() {
			accepted, _, id := svc.SubmitJob(ctx, model.Job{UserID: "u2", Server: recommend.Server{ID: "s"}})

			Convey("Then one should be assigned", func() {
				So(accepted, ShouldBeTrue)
				So(id, ShouldNotBeEmpty)
			})
		})

		Convey("When reading a board nobody owns", func() {
			_, err := svc.Board(ctx, "ghost", 10)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
