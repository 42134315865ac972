package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewdash/internal/adapters/observability"
)

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewFromClient(c *redis.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, keys...).Err()
}

// DelPattern removes every key matching a glob pattern, scanning in batches.
func (r *Cache) DelPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if err := r.Del(ctx, keys...); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
