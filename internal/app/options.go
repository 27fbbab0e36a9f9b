package service

import (
	"time"

	"github.com/okian/affinity/internal/adapters/cache"
	"github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many job ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of board store shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithMaxBoardSize caps entries per user board. 0 disables the cap.
func WithMaxBoardSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.maxBoardSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMatchWeights sets the admin weight set for compatibility scoring.
func WithMatchWeights(w matchmaking.Weights) Option {
	return func(s *Service) {
		s.matchWeights = w
	}
}

// WithDefaultStrategy sets the strategy used when a request names none.
func WithDefaultStrategy(strategy recommend.Strategy) Option {
	return func(s *Service) {
		s.defaultStrategy = strategy
	}
}

// WithCache enables result caching for compatibility scoring.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCacheTTL sets how long cached results live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}
