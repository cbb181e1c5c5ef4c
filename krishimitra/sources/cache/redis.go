package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"krishimitra/krishimitra/config"
)

// Cache is a thin get/set wrapper over Redis for the weather and market
// relays. A nil *Cache is valid and disables caching, so the gateway runs
// without Redis in dev.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(ctx context.Context, cfg config.Config) (*Cache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{rdb: rdb, ttl: cfg.CacheTTL}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Cache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	// best effort; a failed cache write never fails the relay
	c.rdb.Set(ctx, key, data, c.ttl)
}
