// Package worker scores queued recommendation jobs and files the results on
// user boards.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/affinity/internal/adapters/mq/queue"
	"github.com/okian/affinity/internal/adapters/repository"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/pkg/logger"
	"github.com/okian/affinity/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Job is what workers read off the queue.
type Job = queue.Job

// Scorer computes the recommendation for a job.
type Scorer interface {
	ScoreJob(ctx context.Context, job Job) (recommend.Result, error)
}

// Updater files a scored entry on a board.
type Updater interface {
	Upsert(ctx context.Context, e repository.Entry) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Counters aggregates job outcomes across workers.
type Counters struct {
	processed atomic.Int64
	failed    atomic.Int64
}

// Processed returns the number of jobs filed on a board.
func (c *Counters) Processed() int64 { return c.processed.Load() }

// Failed returns the number of jobs that errored.
func (c *Counters) Failed() int64 { return c.failed.Load() }

// InMemoryWorker consumes jobs until the queue closes or it is stopped.
type InMemoryWorker struct {
	queue    Queue
	scorer   Scorer
	updater  Updater
	counters *Counters
	logger   logger.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, scorer Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	s := applyOptions("worker", opts)
	return &InMemoryWorker{
		queue:    q,
		scorer:   scorer,
		updater:  updater,
		counters: &Counters{},
		logger:   s.logger.Named(s.name),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Counters returns the worker's outcome counters.
func (w *InMemoryWorker) Counters() *Counters { return w.counters }

// Run processes jobs until ctx is done, Stop is called or the queue closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "job failed", logger.String("job_id", job.JobID), logger.Error(err))
			}
		}
	}
}

// Stop asks the worker to exit after its current job.
func (w *InMemoryWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown stops the worker and waits for it to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.Stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	res, err := w.scorer.ScoreJob(ctx, job)
	if err != nil {
		w.fail("scoring_error")
		return fmt.Errorf("score job %s: %w", job.JobID, err)
	}
	metrics.RecordRecommendation(string(res.Strategy), res.FinalScore, float64(time.Since(start).Microseconds())/1000)

	updatedAt := job.SubmittedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	userID, serverID := job.BoardKey()
	entry := repository.Entry{
		UserID:    userID,
		ServerID:  serverID,
		Score:     res.FinalScore,
		Strategy:  string(res.Strategy),
		JobID:     job.JobID,
		UpdatedAt: updatedAt,
	}
	if err := w.updater.Upsert(ctx, entry); err != nil {
		w.fail("board_error")
		return fmt.Errorf("file job %s: %w", job.JobID, err)
	}

	w.counters.processed.Add(1)
	metrics.RecordJobProcessed()
	w.logger.Debug(ctx, "job scored",
		logger.String("job_id", job.JobID),
		logger.String("user_id", job.UserID),
		logger.String("server_id", job.Server.ID),
		logger.Float64("score", res.FinalScore),
	)
	return nil
}

func (w *InMemoryWorker) fail(kind string) {
	w.counters.failed.Add(1)
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
}

// Pool runs a fixed number of workers sharing one queue and one set of
// counters.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters
	logger   logger.Logger
}

// NewPool creates a pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, q Queue, scorer Scorer, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	s := applyOptions("worker-pool", opts)
	counters := &Counters{}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: counters,
		logger:   s.logger.Named(s.name),
	}
	for i := range p.workers {
		w := NewInMemoryWorker(q, scorer, updater, WithLogger(s.logger), WithName("worker-"+strconv.Itoa(i)))
		w.counters = counters
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Counters returns the pool-wide outcome counters.
func (p *Pool) Counters() *Counters { return p.counters }

// Start runs every worker in its own goroutine.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue, lets workers drain it and waits for them. Workers
// still busy when ctx or the pool timeout expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-waitCtx.Done():
			timedOut = true
			w.Stop()
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", waitCtx.Err())
	}
	return nil
}
