// Package cache stores finished layouts so identical requests skip the
// layout run.
//
// Entries are opaque byte slices (serialized graph.Layout records) under
// keys built by a [Keyer] from the input graph's hash and the layout
// options. Backends:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: caching disabled
//
// Wrap a backend with [Instrument] to report hits, misses and writes to
// the observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
