package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listings-workers/internal/common/config"
	apperrors "listings-workers/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by GetJSON when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// RedisClient is the response cache backing store.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

// NewRedisFromClient wraps an existing client (miniredis or redismock in tests).
func NewRedisFromClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{Client: rdb}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(fmt.Errorf("redis ping failed: %w", err))
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// GetJSON decodes the value at key into out.
func (c *RedisClient) GetJSON(ctx context.Context, key string, out interface{}) error {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value as JSON with the given TTL.
func (c *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisClient) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// DeletePrefix removes every key matching prefix*, scanning in batches.
func (c *RedisClient) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.Client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.Client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
