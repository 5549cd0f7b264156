// Package cache implements the forecast cache on Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bill-tracker/backend/internal/application/adapter"
)

const (
	defaultPrefix = "bill-tracker:forecast"
	generationKey = "generation"
)

// redisForecastCache implements the adapter.ForecastCache interface.
// Entries are keyed by a generation counter; Invalidate bumps the counter
// so older entries are never read again and expire on their own TTL.
type redisForecastCache struct {
	client *redis.Client
	prefix string
}

// NewRedisForecastCache creates a new Redis-backed forecast cache.
func NewRedisForecastCache(client *redis.Client, prefix string) adapter.ForecastCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &redisForecastCache{
		client: client,
		prefix: prefix,
	}
}

// Get returns the cached value for key in the current generation.
func (c *redisForecastCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	fullKey, err := c.key(ctx, key)
	if err != nil {
		return nil, false, err
	}

	value, err := c.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read forecast cache: %w", err)
	}
	return value, true, nil
}

// Set stores value under key in the current generation.
func (c *redisForecastCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	fullKey, err := c.key(ctx, key)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, fullKey, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write forecast cache: %w", err)
	}
	return nil
}

// Invalidate starts a new generation.
func (c *redisForecastCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.prefix+":"+generationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate forecast cache: %w", err)
	}
	return nil
}

func (c *redisForecastCache) key(ctx context.Context, key string) (string, error) {
	generation, err := c.client.Get(ctx, c.prefix+":"+generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to read forecast cache generation: %w", err)
	}
	return fmt.Sprintf("%s:%d:%s", c.prefix, generation, key), nil
}

// noopForecastCache is used when Redis is disabled. Every read misses.
type noopForecastCache struct{}

// NewNoopForecastCache creates a cache that stores nothing.
func NewNoopForecastCache() adapter.ForecastCache {
	return noopForecastCache{}
}

func (noopForecastCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (noopForecastCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (noopForecastCache) Invalidate(context.Context) error {
	return nil
}

// NewClient connects to the Redis server at url and verifies it responds.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
