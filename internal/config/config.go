// Package config defines service configuration and how it is loaded.
package config

import (
	"runtime"
	"time"

	"github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/recommend"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	// WorkerCount sets the number of recommendation workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// DedupeSize caps how many job ids are remembered.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`

	// ShardCount configures the number of shards in the board store.
	ShardCount int `koanf:"shard_count" validate:"gte=1"`

	// MaxBoardSize caps the entries kept per user board. 0 disables the cap.
	MaxBoardSize int `koanf:"max_board_size" validate:"gte=0"`

	// MaxRankLimit caps GET /v1/recommendations/boards/{user_id}?limit.
	MaxRankLimit int `koanf:"max_rank_limit" validate:"gte=1"`

	// DefaultStrategy is used when a request names none.
	DefaultStrategy string `koanf:"default_strategy" validate:"oneof=content_based collaborative social temporal hybrid"`

	// MatchWeights is the admin-configured compatibility weight set.
	MatchWeights matchmaking.Weights `koanf:"match_weights"`

	// CacheEnabled turns on result caching for compatibility scoring.
	CacheEnabled bool `koanf:"cache_enabled"`

	// CacheTTL is how long cached results live.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`

	// RedisAddr selects the Redis cache backend. Empty keeps the cache in memory.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU() * 2,
		DedupeSize:      50_000,
		ShardCount:      16,
		MaxBoardSize:    500,
		MaxRankLimit:    100,
		DefaultStrategy: string(recommend.StrategyHybrid),
		MatchWeights:    matchmaking.DefaultWeights(),
		CacheEnabled:    true,
		CacheTTL:        5 * time.Minute,
	}
}
