// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize    = 10
	defaultDialTimeout = 5 * time.Second
	defaultIOTimeout   = 3 * time.Second
)

// RedisClient wraps the Redis client shared by the template cache and the
// record store.
type RedisClient struct {
	Client *redis.Client
	addr   string
}

// NewRedis creates the client without contacting the server.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	return &RedisClient{Client: redis.NewClient(options(cfg)), addr: cfg.Address}, nil
}

func options(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  config.GetDuration(cfg.DialTimeout),
		ReadTimeout:  config.GetDuration(cfg.IOTimeout),
		WriteTimeout: config.GetDuration(cfg.IOTimeout),
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultIOTimeout
		opts.WriteTimeout = defaultIOTimeout
	}
	opts.MinIdleConns = opts.PoolSize / 5
	return opts
}

// ConnectRedis creates a client and pings it up to attempts times, doubling
// the wait from one second between tries.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, attempts int, log logger.Logger) (*RedisClient, error) {
	c, err := NewRedis(cfg)
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		attempts = 1
	}

	delay := time.Second
	for attempt := 1; ; attempt++ {
		err = c.Ping(ctx)
		if err == nil {
			return c, nil
		}
		if attempt >= attempts {
			break
		}
		log.Warn("Redis not ready, retrying", map[string]interface{}{
			"address":     cfg.Address,
			"attempt":     attempt,
			"maxAttempts": attempts,
			"nextRetryIn": delay.String(),
			"error":       err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = c.Close()
			return nil, ctx.Err()
		}
		delay *= 2
	}
	_ = c.Close()
	return nil, fmt.Errorf("redis at %s failed after %d attempts: %w", cfg.Address, attempts, err)
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// GetClient returns the command interface used by the cache and store
// packages.
func (c *RedisClient) GetClient() redis.Cmdable {
	return c.Client
}
