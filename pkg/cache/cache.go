// Package cache stores analysis results between runs.
//
// [Cache] is a byte-oriented key/value store with per-entry TTL. Three
// backends are provided:
//
//   - [FileCache]: one JSON file per key under a directory, used by the CLI.
//   - [RedisCache]: a shared Redis instance, used by the API server.
//   - [NullCache]: stores nothing; caching disabled.
//
// Keys are produced by a [Keyer] so that every caller derives the same key
// for the same archive bytes and options.
package cache

import (
	"context"
	"time"
)

// Cache is the storage contract shared by all backends.
//
// Get returns (nil, false, nil) on a miss. Expired entries are misses. An
// error is returned only when the backend itself fails.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per key type.
const (
	// TTLAnalysis applies to course models keyed by archive digest. The
	// model is a pure function of the bytes, so entries stay valid until
	// the analyzer itself changes.
	TTLAnalysis = 7 * 24 * time.Hour

	// TTLRecord applies to analyses stored under an id by the API.
	TTLRecord = 24 * time.Hour

	// TTLDownload applies to packages fetched from a URL.
	TTLDownload = time.Hour
)
