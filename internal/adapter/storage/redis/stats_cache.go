package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// StatsCache implements ports.StatsCache using Redis. Dashboard aggregates
// are expensive postgres queries; callers cache them here best-effort.
type StatsCache struct {
	client *goredis.Client
	prefix string
}

// NewStatsCache creates a new Redis-backed stats cache.
func NewStatsCache(client *goredis.Client) *StatsCache {
	return &StatsCache{
		client: client,
		prefix: "stats:",
	}
}

// Get retrieves a cached payload. Returns nil, nil if the key is absent.
func (c *StatsCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis stats get: %w", err)
	}
	return val, nil
}

// Set stores a payload with TTL.
func (c *StatsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis stats set: %w", err)
	}
	return nil
}
