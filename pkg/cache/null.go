package cache

import (
	"context"
	"time"
)

// NullCache stands in when layouts must not be cached: the --no-cache flag,
// the "none" backend, or a Redis server that could not be reached. Every
// lookup misses and writes are dropped, so the runner always lays out.
type NullCache struct{}

// NewNullCache returns a cache that keeps nothing.
func NewNullCache() Cache {
	return &NullCache{}
}

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
