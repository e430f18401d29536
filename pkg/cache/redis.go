package cache

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// EnvRedisAddr enables the Redis backend when set, e.g. "localhost:6379".
const EnvRedisAddr = "SLAP_REDIS_ADDR"

// RedisCache stores entries on a shared Redis instance, so several machines
// (or CI jobs) can reuse the same PyPI and SPDX responses.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the given address. The connection is verified
// eagerly so a misconfigured address fails at startup, not mid-command.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

// FromEnv returns a Redis-backed cache when EnvRedisAddr is set, otherwise
// the given fallback.
func FromEnv(ctx context.Context, fallback Cache) (Cache, error) {
	addr := os.Getenv(EnvRedisAddr)
	if addr == "" {
		return fallback, nil
	}
	return NewRedisCache(ctx, addr)
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. Redis handles expiry natively, so no entry
// envelope is needed.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close releases the client connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
