package cache

import (
	"context"
	"time"

	"github.com/matzehuels/boxlayout/pkg/observability"
)

// Instrument wraps c so every lookup and write is reported to the cache
// hooks under the given backend name.
func Instrument(c Cache, backend string) Cache {
	return &instrumented{Cache: c, backend: backend}
}

type instrumented struct {
	Cache
	backend string
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, c.backend)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.backend)
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.backend, len(data))
	return nil
}

// Clear forwards to the wrapped backend when it supports clearing.
func (c *instrumented) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}
