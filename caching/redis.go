package caching

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache go-redis适配，client由外部注入和管理
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Contains(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, expire time.Duration) error {
	return c.client.Set(ctx, key, value, expire).Err()
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
