package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

// ListCache caches public listing pages as JSON.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

func (c *ListCache) Key(prefix string, params map[string]string) string {
	return helpers.QueryCacheKey("cache:"+prefix, params)
}

func (c *ListCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	return helpers.RedisGetJSON(ctx, c.rdb, key, &dst)
}

func (c *ListCache) Set(ctx context.Context, key string, v any) error {
	return helpers.RedisSetJSON(ctx, c.rdb, key, v, c.ttl)
}

// Invalidate drops every cached page for prefix.
func (c *ListCache) Invalidate(ctx context.Context, prefix string) error {
	return helpers.RedisDelPrefix(ctx, c.rdb, "cache:"+prefix+":")
}
