package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisImageCache struct {
	client *redis.Client
}

func NewRedisImageCache(client *redis.Client) *RedisImageCache {
	return &RedisImageCache{client: client}
}

func imageKey(name string) string {
	return "images:" + strings.ToLower(strings.TrimSpace(name))
}

func (c *RedisImageCache) Get(ctx context.Context, name string) ([]string, bool, error) {
	val, err := c.client.Get(ctx, imageKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil // Not cached yet
	}
	if err != nil {
		return nil, false, err
	}
	var urls []string
	if err := json.Unmarshal([]byte(val), &urls); err != nil {
		return nil, false, err
	}
	return urls, true, nil
}

func (c *RedisImageCache) Set(ctx context.Context, name string, urls []string, ttl time.Duration) error {
	data, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, imageKey(name), data, ttl).Err()
}
