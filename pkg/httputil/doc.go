// Package httputil provides HTTP utilities for the registry and API clients.
//
// # Overview
//
// This package provides infrastructure used by the PyPI, SPDX and GitHub
// clients:
//
//   - [Cache]: JSON response caching over a byte cache backend
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores JSON documents through a [cache.Cache] backend (a directory
// under the user cache dir by default, or Redis when SLAP_REDIS_ADDR is set)
// with a configurable TTL. This speeds up repeated checks and keeps load off
// the registries.
//
// Usage:
//
//	c, err := httputil.OpenDefault(ctx, 24*time.Hour)
//	ok, err := c.Get(ctx, "pypi:requests", &pkg)
//	if !ok {
//	    pkg = fetchFromAPI()
//	    c.Set(ctx, "pypi:requests", pkg)
//	}
//
// Cache keys should be namespaced per client via [Cache.Namespace] to avoid
// collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//
// It uses exponential backoff, 3 attempts with a 1 second base delay by
// default.
//
// The cache can be cleared via `slap cache clear` or by deleting the cache
// directory.
package httputil
