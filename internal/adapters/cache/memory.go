package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/affinity/pkg/metrics"
)

const backendMemory = "memory"

type item struct {
	data      []byte
	expiresAt time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// Memory is an in-process cache. Expired items are dropped on read and by
// the janitor.
type Memory struct {
	mu    sync.RWMutex
	items map[string]item
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an in-memory cache. A positive cleanupInterval starts a
// janitor that runs until ctx is done or Close is called.
func NewMemory(ctx context.Context, cleanupInterval time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[string]item),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if cleanupInterval > 0 {
		go m.janitor(ctx, cleanupInterval)
	}
	return m
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string, dst any) error {
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || it.expired(m.now()) {
		if ok {
			m.mu.Lock()
			if cur, still := m.items[key]; still && cur.expired(m.now()) {
				delete(m.items, key)
			}
			m.mu.Unlock()
		}
		metrics.RecordCacheResult(backendMemory, "miss")
		return ErrMiss
	}
	if err := json.Unmarshal(it.data, dst); err != nil {
		metrics.RecordCacheResult(backendMemory, "error")
		return fmt.Errorf("decode %s: %w", key, err)
	}
	metrics.RecordCacheResult(backendMemory, "hit")
	return nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	it := item{data: data}
	if ttl > 0 {
		it.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = it
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored items, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Sweep removes expired items and returns how many were dropped.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, it := range m.items {
		if it.expired(now) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Name implements Cache.
func (m *Memory) Name() string { return backendMemory }

// Close stops the janitor.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
