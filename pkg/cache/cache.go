// Package cache provides the key-value stores behind resumable generation.
//
// A [Cache] is a small byte store with optional expiry. Three backends are
// available:
//
//   - [FileCache] keeps entries as JSON files under a directory; the CLI uses
//     <output>/.checkpoints by default.
//   - [RedisCache] shares a ledger between machines writing to the same
//     output volume.
//   - [NullCache] stores nothing and disables resume.
//
// [Checkpoint] builds the per-frame ledger on top of any Cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
