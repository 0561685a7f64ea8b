package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. The pipeline falls back to it when no cache is
// configured, and the render and explore commands use it because they never
// encode a snapshot.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache with caching disabled.
func NewNullCache() Cache {
	return NullCache{}
}

// Get reports a miss for every key.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

// Delete is a no-op.
func (NullCache) Delete(context.Context, string) error {
	return nil
}

// Close is a no-op.
func (NullCache) Close() error {
	return nil
}
