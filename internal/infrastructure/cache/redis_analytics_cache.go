package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	poolingapp "github.com/craftbridge/backend/internal/application/pooling"
)

// RedisAnalyticsCache caches serialized analytics snapshots in Redis so
// repeated region lookups do not re-run the aggregation queries. Suitable
// for distributed deployments where multiple instances share the cache.
type RedisAnalyticsCache struct {
	client *redis.Client
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisAnalyticsCache creates a Redis-backed analytics cache
func NewRedisAnalyticsCache(cfg RedisConfig) (*RedisAnalyticsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAnalyticsCache{client: client}, nil
}

// NewRedisAnalyticsCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisAnalyticsCacheWithClient(client *redis.Client) *RedisAnalyticsCache {
	return &RedisAnalyticsCache{client: client}
}

// Get returns the cached value for the key, reporting whether it was present
func (c *RedisAnalyticsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read analytics cache: %w", err)
	}
	return value, true, nil
}

// Set stores the value under the key with the given TTL
func (c *RedisAnalyticsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write analytics cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisAnalyticsCache) Close() error {
	return c.client.Close()
}

// Ensure RedisAnalyticsCache implements AnalyticsCache
var _ poolingapp.AnalyticsCache = (*RedisAnalyticsCache)(nil)
