// Package service owns the scoring engine and the job pipeline and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/affinity/internal/adapters/cache"
	jobqueue "github.com/okian/affinity/internal/adapters/mq/queue"
	workerpool "github.com/okian/affinity/internal/adapters/mq/worker"
	"github.com/okian/affinity/internal/adapters/repository"
	"github.com/okian/affinity/internal/domain/dedupe"
	"github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/internal/domain/scoring"
	"github.com/okian/affinity/internal/domain/similarity"
	"github.com/okian/affinity/internal/domain/skillcalc"
	"github.com/okian/affinity/internal/domain/types"
	"github.com/okian/affinity/internal/validation"
	"github.com/okian/affinity/pkg/logger"
	"github.com/okian/affinity/pkg/metrics"
)

const (
	compatibilityKeyPrefix = "compat"
	stopTimeout            = 30 * time.Second
)

// Service implements the API dependencies for compatibility scoring and
// server recommendations.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine  *scoring.Engine
	boards  *repository.BoardStore
	deduper dedupe.Deduper
	queue   *jobqueue.InMemoryQueue
	pool    *workerpool.Pool
	cache   cache.Cache

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	shardCount      int
	maxBoardSize    int
	matchWeights    matchmaking.Weights
	defaultStrategy recommend.Strategy
	cacheTTL        time.Duration

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Components that run goroutines are created by
// Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10_000,
		dedupeSize:      50_000,
		shardCount:      16,
		maxBoardSize:    500,
		matchWeights:    matchmaking.DefaultWeights(),
		defaultStrategy: recommend.StrategyHybrid,
		cacheTTL:        5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = scoring.NewEngine(
		scoring.WithMatchWeights(s.matchWeights),
		scoring.WithDefaultStrategy(s.defaultStrategy),
	)
	metrics.UpdateMatchWeights(s.matchWeights.ToMap())
	return s
}

// Start creates the board store, deduper, queue and worker pool. The pipeline
// outlives ctx and runs until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting affinity service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.boards = repository.NewBoardStore(runCtx,
		repository.WithShardCount(s.shardCount),
		repository.WithMaxBoardSize(s.maxBoardSize),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.boards,
		workerpool.WithLogger(s.logger),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "affinity service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxBoardSize", s.maxBoardSize),
		logger.String("defaultStrategy", string(s.engine.DefaultStrategy())),
		logger.Bool("cache", s.cache != nil),
	)
	return nil
}

// Stop drains the queue, stops the workers and releases the store and cache.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping affinity service...")

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	var errs []error
	if err := s.pool.Shutdown(stopCtx); err != nil {
		errs = append(errs, err)
	}
	s.cancel()
	if err := s.boards.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s cache: %w", s.cache.Name(), err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "affinity service stopped")
	return errors.Join(errs...)
}

type compatibilityKey struct {
	Team    matchmaking.Team    `json:"team"`
	Request matchmaking.Request `json:"request"`
	Weights matchmaking.Weights `json:"weights"`
}

// Compatibility scores one team against a request. A nil override uses the
// configured weight set; an override must pass weight validation.
func (s *Service) Compatibility(ctx context.Context, team matchmaking.Team, request matchmaking.Request, override *matchmaking.Weights) (matchmaking.Result, error) { //nolint:gocritic // hugeParam: inputs travel by value
	if err := checkWeights(override); err != nil {
		return matchmaking.Result{}, err
	}
	start := time.Now()

	weights := s.engine.Weights()
	if override != nil {
		weights = *override
	}
	key := s.cacheKey(ctx, compatibilityKey{Team: team, Request: request, Weights: weights})

	var res matchmaking.Result
	if key != "" {
		err := s.cache.Get(ctx, key, &res)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log().Warn(ctx, "cache read failed", logger.String("backend", s.cache.Name()), logger.Error(err))
		}
	}

	res, err := s.engine.Compatibility(ctx, team, request, &weights)
	if err != nil {
		return matchmaking.Result{}, err
	}
	metrics.RecordCompatibility("single", res.TotalScore, ms(time.Since(start)))

	if key != "" {
		if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
			s.log().Warn(ctx, "cache write failed", logger.String("backend", s.cache.Name()), logger.Error(err))
		}
	}
	return res, nil
}

// RankTeams scores every team for the request, best first.
func (s *Service) RankTeams(ctx context.Context, request matchmaking.Request, teams []matchmaking.Team, override *matchmaking.Weights) ([]matchmaking.Result, error) {
	if err := checkWeights(override); err != nil {
		return nil, err
	}
	start := time.Now()
	results, err := s.engine.RankTeams(ctx, request, teams, override)
	if err != nil {
		return nil, err
	}
	elapsed := ms(time.Since(start))
	for _, r := range results {
		metrics.RecordCompatibility("rank", r.TotalScore, elapsed)
	}
	return results, nil
}

// Recommend scores one server for a user. An empty strategy uses the
// configured default.
func (s *Service) Recommend(ctx context.Context, profile recommend.Profile, server recommend.Server, strategy recommend.Strategy) (recommend.Result, error) { //nolint:gocritic // hugeParam: inputs travel by value
	start := time.Now()
	res, err := s.engine.Recommend(ctx, profile, server, strategy)
	if err != nil {
		return recommend.Result{}, err
	}
	metrics.RecordRecommendation(string(res.Strategy), res.FinalScore, ms(time.Since(start)))
	return res, nil
}

// RankServers scores every server for a user, best first.
func (s *Service) RankServers(ctx context.Context, profile recommend.Profile, servers []recommend.Server, strategy recommend.Strategy) ([]recommend.Result, error) { //nolint:gocritic // hugeParam: inputs travel by value
	start := time.Now()
	results, err := s.engine.RankServers(ctx, profile, servers, strategy)
	if err != nil {
		return nil, err
	}
	elapsed := ms(time.Since(start))
	for _, r := range results {
		metrics.RecordRecommendation(string(r.Strategy), r.FinalScore, elapsed)
	}
	return results, nil
}

// Similarity returns the Jaccard similarity of two label sets.
func (s *Service) Similarity(_ context.Context, a, b []string) float64 {
	metrics.RecordSimilarity()
	return similarity.Jaccard(types.NewSet(a...), types.NewSet(b...))
}

// SkillEstimate derives a skill tier from playtime and achievement completion.
func (s *Service) SkillEstimate(_ context.Context, playtimeHours, achievementPercent float64) skillcalc.Estimate {
	est := skillcalc.Fallback(playtimeHours, achievementPercent)
	metrics.RecordSkillEstimate(string(est.Level))
	return est
}

// SubmitJob queues a recommendation job. A job without an id gets one. A job
// id seen before is reported as a duplicate and not queued again. When the
// queue rejects the job its id is forgotten so the caller can retry.
func (s *Service) SubmitJob(ctx context.Context, job model.Job) (accepted, duplicate bool, jobID string) { //nolint:gocritic // hugeParam: jobs travel by value
	s.mu.RLock()
	defer s.mu.RUnlock()

	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if !s.started {
		metrics.RecordJobRejected()
		return false, false, job.JobID
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	if s.deduper.SeenAndRecord(ctx, job.JobID) {
		metrics.RecordJobDuplicate()
		s.logger.Debug(ctx, "duplicate job", logger.String("job_id", job.JobID))
		return true, true, job.JobID
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, job.JobID)
		metrics.RecordJobRejected()
		s.logger.Warn(ctx, "job rejected",
			logger.String("job_id", job.JobID),
			logger.Error(err),
		)
		return false, false, job.JobID
	}
	metrics.RecordJobAccepted()
	return true, false, job.JobID
}

// Board returns the best n entries of a user's board.
func (s *Service) Board(ctx context.Context, userID string, n int) ([]repository.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	start := time.Now()
	defer func() { metrics.RecordBoardQueryLatency(ms(time.Since(start))) }()
	return s.boards.TopN(ctx, userID, n)
}

// BoardRank returns one server's entry and position on a user's board.
func (s *Service) BoardRank(ctx context.Context, userID, serverID string) (repository.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return repository.Entry{}, ErrNotStarted
	}
	start := time.Now()
	defer func() { metrics.RecordBoardQueryLatency(ms(time.Since(start))) }()
	return s.boards.Rank(ctx, userID, serverID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"maxBoardSize":    s.maxBoardSize,
		"defaultStrategy": string(s.engine.DefaultStrategy()),
		"matchWeights":    s.engine.Weights(),
		"cacheEnabled":    s.cache != nil,
	}
	if s.cache != nil {
		stats["cacheBackend"] = s.cache.Name()
	}

	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		stats["boardUsers"] = s.boards.Users(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		stats["jobsProcessed"] = s.pool.Counters().Processed()
		stats["jobsFailed"] = s.pool.Counters().Failed()

		metrics.UpdateQueueSize(queueLen, s.queue.Capacity())
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	return stats
}

func (s *Service) cacheKey(ctx context.Context, v any) string {
	if s.cache == nil {
		return ""
	}
	key, err := cache.Key(compatibilityKeyPrefix, v)
	if err != nil {
		s.log().Warn(ctx, "cache key failed", logger.Error(err))
		return ""
	}
	return key
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

func checkWeights(w *matchmaking.Weights) error {
	if w == nil {
		return nil
	}
	if err := validation.Struct(*w); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWeights, err)
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
