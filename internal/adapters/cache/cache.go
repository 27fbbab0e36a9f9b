// Package cache stores scoring results keyed by a hash of their inputs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Cache is a byte-oriented TTL cache. Values are encoded as JSON so every
// backend round-trips them the same way.
type Cache interface {
	// Get decodes the cached value into dst or returns ErrMiss.
	Get(ctx context.Context, key string, dst any) error
	// Set stores v under key for ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	// Name identifies the backend in metrics and logs.
	Name() string
	Close() error
}

// Key hashes the JSON encoding of v and prefixes it. Map keys are emitted in
// sorted order, so equal inputs yield equal keys.
func Key(prefix string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:]), nil
}
