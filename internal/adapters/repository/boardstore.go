package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/okian/affinity/pkg/metrics"
)

const (
	defaultShardCount            = 16
	defaultMaxBoardSize          = 500
	defaultMetricsUpdateInterval = 5 * time.Second
)

type record struct {
	score     scoreFP
	strategy  string
	jobID     string
	updatedAt time.Time
}

type board struct {
	root *node
	byID map[string]record
}

type shard struct {
	mu     sync.RWMutex
	boards map[string]*board
}

// BoardStore is an in-memory Store. Users are spread across lock shards and
// each board is a treap keyed by score and server id.
type BoardStore struct {
	shards                []*shard
	shardCount            int
	maxBoardSize          int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewBoardStore constructs a board store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewBoardStore(ctx context.Context, opts ...Option) *BoardStore {
	s := &BoardStore{
		shardCount:            defaultShardCount,
		maxBoardSize:          defaultMaxBoardSize,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{boards: make(map[string]*board)}
	}
	s.startMetricsUpdater(ctx)
	return s
}

func (s *BoardStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%uint32(len(s.shards))] //nolint:gosec // shard count is small and positive
}

// Upsert implements Store.Upsert. An entry older than the stored one for the
// same server is dropped.
func (s *BoardStore) Upsert(_ context.Context, e Entry) error {
	if strings.TrimSpace(e.UserID) == "" || strings.TrimSpace(e.ServerID) == "" {
		metrics.RecordErrorByComponent("repository", "invalid_entry")
		return fmt.Errorf("%w: user and server id are required", ErrInvalidEntry)
	}
	score := toFixedPoint(e.Score)
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}

	sh := s.shardFor(e.UserID)
	sh.mu.Lock()
	b, ok := sh.boards[e.UserID]
	if !ok {
		b = &board{byID: make(map[string]record)}
		sh.boards[e.UserID] = b
	}
	if old, exists := b.byID[e.ServerID]; exists {
		if old.updatedAt.After(e.UpdatedAt) {
			sh.mu.Unlock()
			metrics.RecordErrorByComponent("repository", "stale_entry")
			return nil
		}
		b.root = deleteNode(b.root, e.ServerID, old.score)
	}
	b.byID[e.ServerID] = record{score: score, strategy: e.Strategy, jobID: e.JobID, updatedAt: e.UpdatedAt}
	b.root = insert(b.root, e.ServerID, score)

	evicted := 0
	for s.maxBoardSize > 0 && len(b.byID) > s.maxBoardSize {
		tail := last(b.root)
		b.root = deleteNode(b.root, tail.id, tail.score)
		delete(b.byID, tail.id)
		evicted++
	}
	sh.mu.Unlock()

	metrics.RecordBoardUpdate()
	if evicted > 0 {
		metrics.RecordBoardEviction(evicted)
	}
	return nil
}

// Rank implements Store.Rank in O(log n).
func (s *BoardStore) Rank(_ context.Context, userID, serverID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	b, ok := sh.boards[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	rec, ok := b.byID[serverID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("server %s on board %s: %w", serverID, userID, ErrNotFound)
	}
	e := toEntry(userID, serverID, rec)
	e.Rank = position(b.root, serverID, rec.score)
	return e, nil
}

// TopN implements Store.TopN.
func (s *BoardStore) TopN(_ context.Context, userID string, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	b, ok := sh.boards[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	nodes := make([]*node, 0, min(n, len(b.byID)))
	collectTopN(b.root, n, &nodes)

	out := make([]Entry, 0, len(nodes))
	for i, nd := range nodes {
		e := toEntry(userID, nd.id, b.byID[nd.id])
		e.Rank = i + 1
		out = append(out, e)
	}
	return out, nil
}

// Count implements Store.Count.
func (s *BoardStore) Count(_ context.Context, userID string) int {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if b, ok := sh.boards[userID]; ok {
		return len(b.byID)
	}
	return 0
}

// Users implements Store.Users.
func (s *BoardStore) Users(_ context.Context) int {
	users, _ := s.totals()
	return users
}

// Close stops the background metrics updater.
func (s *BoardStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *BoardStore) totals() (users, entries int) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		users += len(sh.boards)
		for _, b := range sh.boards {
			entries += len(b.byID)
		}
		sh.mu.RUnlock()
	}
	return users, entries
}

func (s *BoardStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *BoardStore) updateMetrics() {
	users, entries := s.totals()
	metrics.UpdateBoardUsers(users)
	metrics.UpdateBoardEntries(entries)
}

func toEntry(userID, serverID string, rec record) Entry {
	return Entry{
		UserID:    userID,
		ServerID:  serverID,
		Score:     toFloat(rec.score),
		Strategy:  rec.strategy,
		JobID:     rec.jobID,
		UpdatedAt: rec.updatedAt,
	}
}
