package cache

import (
	"context"
	"time"
)

// NoopCache is a Cache that stores nothing. It is used when no Redis URL
// is configured, so callers always fall through to the underlying source.
type NoopCache struct{}

// NewNoopCache creates a new NoopCache.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// Get always reports a miss.
func (n *NoopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrNotFound
}

// Set discards the value.
func (n *NoopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (n *NoopCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Ping always succeeds.
func (n *NoopCache) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (n *NoopCache) Close() error {
	return nil
}
