package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores coordination-service results between requests.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)

	Set(ctx context.Context, key string, value any) error

	// InvalidateResource drops every key belonging to a resource.
	InvalidateResource(ctx context.Context, resource string) error
}

// Key returns the cache key of one entry of a resource.
func Key(resource string, parts ...string) string {
	key := "eedm:" + resource
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

type RedisCache struct {
	client     redis.UniversalClient
	expiration time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client redis.UniversalClient, expiration time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		expiration: expiration,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s for cache: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.expiration).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

func (c *RedisCache) InvalidateResource(ctx context.Context, resource string) error {
	pattern := Key(resource) + ":*"

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys for %s: %w", resource, err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", resource, err)
	}
	return nil
}

// Noop is used when no cache is configured; every lookup misses.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, any) error { return nil }

func (Noop) InvalidateResource(context.Context, string) error { return nil }
