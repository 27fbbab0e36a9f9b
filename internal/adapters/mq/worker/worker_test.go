package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/affinity/internal/adapters/mq/queue"
	"github.com/okian/affinity/internal/adapters/mq/worker"
	"github.com/okian/affinity/internal/adapters/repository"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/internal/domain/scoring"
	"github.com/okian/affinity/internal/domain/types"
	logging "github.com/okian/affinity/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (q *mockQueue) Dequeue(context.Context) <-chan worker.Job { return q.jobs }

func (q *mockQueue) Close() error {
	close(q.jobs)
	return nil
}

type mockScorer struct {
	mu     sync.Mutex
	scores map[string]float64
	errs   map[string]error
}

func newMockScorer() *mockScorer {
	return &mockScorer{scores: map[string]float64{}, errs: map[string]error{}}
}

func (s *mockScorer) ScoreJob(_ context.Context, job worker.Job) (recommend.Result, error) { //nolint:gocritic // test double
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[job.JobID]; ok {
		return recommend.Result{}, err
	}
	return recommend.Result{ServerID: job.Server.ID, FinalScore: s.scores[job.JobID], Strategy: recommend.StrategyHybrid}, nil
}

type mockUpdater struct {
	mu      sync.Mutex
	entries map[string]repository.Entry
	err     error
}

func newMockUpdater() *mockUpdater {
	return &mockUpdater{entries: map[string]repository.Entry{}}
}

func (u *mockUpdater) Upsert(_ context.Context, e repository.Entry) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	u.entries[e.UserID+"/"+e.ServerID] = e
	return nil
}

func (u *mockUpdater) get(key string) (repository.Entry, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	e, ok := u.entries[key]
	return e, ok
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := newMockScorer()
		updater := newMockUpdater()
		w := worker.NewInMemoryWorker(q, scorer, updater, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job is scored", func() {
			scorer.scores["job-1"] = 81.5
			submitted := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
			q.jobs <- model.Job{JobID: "job-1", UserID: "u1", Server: recommend.Server{ID: "s1"}, SubmittedAt: submitted}

			convey.Convey("Then the result should be filed on the user's board", func() {
				convey.So(waitFor(func() bool { _, ok := updater.get("u1/s1"); return ok }), convey.ShouldBeTrue)
				e, _ := updater.get("u1/s1")
				convey.So(e.Score, convey.ShouldEqual, 81.5)
				convey.So(e.Strategy, convey.ShouldEqual, "hybrid")
				convey.So(e.JobID, convey.ShouldEqual, "job-1")
				convey.So(e.UpdatedAt, convey.ShouldEqual, submitted)
				convey.So(waitFor(func() bool { return w.Counters().Processed() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When scoring fails", func() {
			scorer.errs["job-2"] = errors.New("boom")
			q.jobs <- model.Job{JobID: "job-2", UserID: "u2", Server: recommend.Server{ID: "s2"}}

			convey.Convey("Then nothing should be filed and the failure counted", func() {
				convey.So(waitFor(func() bool { return w.Counters().Failed() == 1 }), convey.ShouldBeTrue)
				_, ok := updater.get("u2/s2")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the board update fails", func() {
			updater.err = errors.New("board down")
			q.jobs <- model.Job{JobID: "job-3", UserID: "u3", Server: recommend.Server{ID: "s3"}}

			convey.Convey("Then the failure should be counted", func() {
				convey.So(waitFor(func() bool { return w.Counters().Failed() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it should exit cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
				<-w.Done()
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool wired to a real queue, engine and board store", t, func() {
		_ = logging.Init()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		store := repository.NewBoardStore(ctx)
		defer store.Close()
		pool := worker.NewPool(4, q, scoring.NewEngine(), store)
		pool.Start(ctx)

		convey.Convey("When jobs for several servers are submitted", func() {
			for i := 0; i < 20; i++ {
				job := model.Job{
					JobID:  fmt.Sprintf("job-%d", i),
					UserID: "u1",
					Server: recommend.Server{
						ID:           fmt.Sprintf("srv-%02d", i),
						ActivityTags: types.NewSet("evening"),
						MemberCount:  5 + i,
						Signals:      recommend.Signals{ContentBased: ptr(float64(i * 5))},
					},
				}
				convey.So(q.Enqueue(ctx, job), convey.ShouldBeNil)
			}

			convey.Convey("Then every job should land on the board in score order", func() {
				convey.So(waitFor(func() bool { return pool.Counters().Processed() == 20 }), convey.ShouldBeTrue)
				convey.So(store.Count(ctx, "u1"), convey.ShouldEqual, 20)
				top, err := store.TopN(ctx, "u1", 3)
				convey.So(err, convey.ShouldBeNil)
				convey.So(top[0].ServerID, convey.ShouldEqual, "srv-19")
				convey.So(top[0].Score, convey.ShouldBeGreaterThanOrEqualTo, top[1].Score)
			})

			convey.Convey("And the pool should drain on shutdown", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(pool.Counters().Processed(), convey.ShouldEqual, 20)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}

func ptr(v float64) *float64 { return &v }
