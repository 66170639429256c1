// Package cache provides the Redis access layer: a company read-through
// cache and token-bucket rate limiting.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps the Redis client shared by the company cache and the limiter.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, connects, and verifies the connection with a ping.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Rate-limit checks sit on every authenticated request; fail fast
	// rather than queue behind a slow server.
	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.PoolTimeout = time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping backs the /readyz redis check.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client. Tests use it to flush state.
func (c *Cache) Client() *redis.Client {
	return c.client
}
