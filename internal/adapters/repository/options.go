package repository

import "time"

// Option applies a configuration option to the BoardStore.
type Option func(*BoardStore)

// WithMaxBoardSize caps each board. Lowest ranked entries are evicted first.
// Zero or negative means unbounded.
func WithMaxBoardSize(n int) Option {
	return func(s *BoardStore) {
		s.maxBoardSize = n
	}
}

// WithShardCount sets how many lock shards users are spread across.
func WithShardCount(n int) Option {
	return func(s *BoardStore) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background gauge updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *BoardStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
