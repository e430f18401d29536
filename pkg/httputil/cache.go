package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/NiklasRosenstein/slap-sub001/pkg/cache"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live (TTL).
//
// When you receive ErrExpired, the cached data still exists in the backend
// but is considered stale. Callers should fetch fresh data from the source
// and update the cache with [Cache.Set].
//
// Use errors.Is to check for this error:
//
//	ok, err := cache.Get(ctx, "key", &value)
//	if errors.Is(err, httputil.ErrExpired) {
//	    // Fetch fresh data and update cache
//	}
var ErrExpired = errors.New("cache entry expired")

// Cache provides caching of arbitrary JSON-marshalable data on top of a
// [cache.Cache] backend.
//
// Each entry is stored as a JSON envelope recording when it was written, so
// staleness is decided by the Cache regardless of which backend holds the
// bytes. Stale entries are reported via [ErrExpired] rather than silently
// dropped, which lets network clients fall back to stale data when the
// registry is unreachable.
//
// A TTL of 0 means entries never expire.
//
// Use [Cache.Namespace] to create scoped views that automatically prefix
// keys, avoiding collisions between different data sources:
//
//	pypi := c.Namespace("pypi:")
//	spdx := c.Namespace("spdx:")
//	pypi.Set(ctx, "requests", data)  // key becomes "pypi:requests"
type Cache struct {
	backend cache.Cache
	ttl     time.Duration
	prefix  string
}

// envelope wraps a cached payload with its write time.
type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// NewCache creates a Cache over the given backend with the given TTL.
// Use 0 for ttl to disable expiration.
func NewCache(backend cache.Cache, ttl time.Duration) *Cache {
	return &Cache{backend: backend, ttl: ttl}
}

// OpenDefault creates a Cache over the default backend: a file cache under
// the user cache directory, or Redis when [cache.EnvRedisAddr] is set.
func OpenDefault(ctx context.Context, ttl time.Duration) (*Cache, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	files, err := cache.NewFileCache(filepath.Join(dir, "slap"))
	if err != nil {
		return nil, err
	}
	backend, err := cache.FromEnv(ctx, files)
	if err != nil {
		return nil, err
	}
	return NewCache(backend, ttl), nil
}

// TTL returns the time-to-live duration for cache entries.
// A TTL of 0 means cache entries never expire.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get retrieves a cached value by key and unmarshals it into v.
//
// Return values indicate three distinct outcomes:
//   - (true, nil): Cache hit. The value was found, is fresh, and unmarshaled into v.
//   - (false, nil): Cache miss. No entry exists for this key. v is unchanged.
//   - (false, ErrExpired): Entry exists but exceeded its TTL. v is unchanged.
//   - (false, other error): Backend error, JSON unmarshal error, etc.
//
// The value v must be a pointer to a type compatible with json.Unmarshal.
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := c.backend.Get(ctx, c.prefix+key)
	if err != nil || !ok {
		return false, err
	}
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(e.StoredAt) > c.ttl {
		return false, ErrExpired
	}
	return true, json.Unmarshal(e.Payload, v)
}

// Set stores a value in the cache under the given key.
//
// The value v is marshaled to JSON and written to the backend. Set overwrites
// any existing entry for key, resetting its write time. This effectively
// refreshes the TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{StoredAt: time.Now(), Payload: payload})
	if err != nil {
		return err
	}
	// The backend keeps stale entries so Get can report ErrExpired instead
	// of a plain miss.
	return c.backend.Set(ctx, c.prefix+key, data, 0)
}

// Namespace returns a new Cache that automatically prefixes all keys with prefix.
//
// This creates a scoped view of the cache, useful for avoiding key collisions
// between different data sources. The returned Cache shares the same backend
// and TTL as the parent. Namespace calls can be chained:
//
//	c.Namespace("python:").Namespace("pypi:")  // prefix: "python:pypi:"
//
// An empty prefix is valid and results in no key transformation.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		backend: c.backend,
		ttl:     c.ttl,
		prefix:  c.prefix + prefix,
	}
}

// Close releases the underlying backend.
func (c *Cache) Close() error { return c.backend.Close() }
