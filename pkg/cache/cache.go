// Package cache stores pipeline artifacts by key.
//
// # Overview
//
// The render pipeline caches two kinds of entries:
//
//   - graph snapshots: the JSON of a built graph after a preset and a mode
//     have been applied
//   - artifacts: rendered output (DOT, SVG, PDF, PNG) of a snapshot
//
// Keys are produced by a [Keyer] from content hashes, so a changed
// definition, value or option yields a different key and stale entries
// simply stop being read.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers
//   - [NullCache]: stores nothing (--no-cache)
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(graphHash, cache.ArtifactKeyOpts{Format: "svg"})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    return data, nil
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A ttl of 0 stores forever.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Default TTLs.
const (
	// GraphTTL is how long graph snapshots are kept.
	GraphTTL = 24 * time.Hour

	// ArtifactTTL is how long rendered artifacts are kept.
	ArtifactTTL = 7 * 24 * time.Hour
)
