package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "reviewdash/internal/adapters/redis"
	"reviewdash/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var miss domain.PeriodMetrics
	ok, err := c.Get(ctx, "metrics:b1:30", &miss)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	in := domain.PeriodMetrics{TotalReviews: 4, AverageRating: 4.25, ResponseRate: 50}
	if err := c.Set(ctx, "metrics:b1:30", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("metrics:b1:30"); ttl.Seconds() != 60 {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	var out domain.PeriodMetrics
	ok, err = c.Get(ctx, "metrics:b1:30", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestCache_DelPattern(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	for _, k := range []string{"metrics:b1:7", "metrics:b1:30", "metrics:b2:30", "reviews:b1"} {
		if err := c.Set(ctx, k, 1, 60); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if err := c.DelPattern(ctx, "metrics:b1:*"); err != nil {
		t.Fatalf("del pattern: %v", err)
	}
	if err := c.Del(ctx, "reviews:b1"); err != nil {
		t.Fatalf("del: %v", err)
	}

	if mr.Exists("metrics:b1:7") || mr.Exists("metrics:b1:30") || mr.Exists("reviews:b1") {
		t.Fatalf("expected b1 keys to be gone, have %v", mr.Keys())
	}
	if !mr.Exists("metrics:b2:30") {
		t.Fatalf("other business keys must survive")
	}
}
