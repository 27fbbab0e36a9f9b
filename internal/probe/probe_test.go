package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/affinity/internal/adapters/http/api"
	"github.com/okian/affinity/internal/adapters/repository"
	service "github.com/okian/affinity/internal/app"
	"github.com/okian/affinity/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

func testConfig(url string) *Config {
	return &Config{
		BaseURL:        url,
		Users:          5,
		ServersPerUser: 8,
		TopN:           5,
		Workers:        4,
		Timeout:        5 * time.Second,
		Wait:           5 * time.Second,
		Seed:           42,
	}
}

func TestGenerateJobs(t *testing.T) {
	Convey("Given a probe configuration", t, func() {
		ctx := context.Background()
		config := testConfig("")
		stats := &Stats{}

		Convey("When jobs are generated", func() {
			jobs, err := generateJobs(ctx, config, stats)
			So(err, ShouldBeNil)

			Convey("Then every user should get one job per server", func() {
				So(jobs, ShouldHaveLength, 40)
				So(stats.JobsGenerated, ShouldEqual, 40)

				groups := groupByUser(jobs)
				So(groups.order, ShouldHaveLength, 5)
				for _, userID := range groups.order {
					userJobs := groups.jobs[userID]
					So(userJobs, ShouldHaveLength, 8)
					for _, j := range userJobs {
						So(j.Strategy, ShouldEqual, userJobs[0].Strategy)
						So(j.Profile.UserID, ShouldEqual, userID)
						So(j.JobID, ShouldNotBeEmpty)
					}
				}
			})

			Convey("Then signals should stay within 0..100", func() {
				for _, j := range jobs {
					for _, v := range []*float64{j.Server.Signals.ContentBased, j.Server.Signals.Collaborative, j.Server.Signals.Social} {
						if v != nil {
							So(*v, ShouldBeBetweenOrEqual, 0, 100)
						}
					}
				}
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := generateJobs(cctx, config, stats)

			Convey("Then generation should stop", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestCheckBoardOrder(t *testing.T) {
	Convey("Given board entries", t, func() {
		good := []repository.Entry{
			{Rank: 1, UserID: "u", ServerID: "a", Score: 80},
			{Rank: 2, UserID: "u", ServerID: "b", Score: 80},
			{Rank: 3, UserID: "u", ServerID: "c", Score: 12.5},
		}

		Convey("Then a sorted board should pass", func() {
			So(checkBoardOrder("u", good), ShouldBeNil)
			So(checkBoardOrder("u", nil), ShouldBeNil)
		})

		Convey("Then a rising score should fail", func() {
			bad := append([]repository.Entry(nil), good...)
			bad[2].Score = 90
			So(checkBoardOrder("u", bad), ShouldNotBeNil)
		})

		Convey("Then a rank gap should fail", func() {
			bad := append([]repository.Entry(nil), good...)
			bad[1].Rank = 3
			So(checkBoardOrder("u", bad), ShouldNotBeNil)
		})

		Convey("Then a foreign entry should fail", func() {
			bad := append([]repository.Entry(nil), good...)
			bad[0].UserID = "v"
			So(checkBoardOrder("u", bad), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service behind an HTTP server", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(1000),
			service.WithLogger(logger.Nop()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When the probe runs against it", func() {
			stats, err := Run(ctx, testConfig(srv.URL))

			Convey("Then every board should agree with synchronous scoring", func() {
				So(err, ShouldBeNil)
				So(stats.JobsAccepted, ShouldEqual, 40)
				So(stats.JobsFailed, ShouldEqual, 0)
				So(stats.BoardsRetrieved, ShouldEqual, 5)
				So(stats.EntriesChecked, ShouldEqual, 25)
				So(stats.Mismatches, ShouldEqual, 0)
				So(stats.Duration, ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a board that disagrees with scoring", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		mux.HandleFunc("GET /stats", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"jobsProcessed":0,"jobsFailed":0}`))
		})
		mux.HandleFunc("POST /v1/recommendations/jobs", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"status":"accepted","job_id":"x"}`))
		})
		mux.HandleFunc("GET /v1/recommendations/boards/{user_id}", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When the probe runs against it", func() {
			config := testConfig(srv.URL)
			config.Wait = 0
			stats, err := Run(ctx, config)

			Convey("Then it should report mismatches", func() {
				So(errors.Is(err, ErrMismatch), ShouldBeTrue)
				So(stats.Mismatches, ShouldEqual, 5)
			})
		})
	})

	Convey("Given no service at the address", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("When the probe runs", func() {
			config := testConfig(url)
			config.Timeout = time.Second
			_, err := Run(context.Background(), config)

			Convey("Then the health check should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
