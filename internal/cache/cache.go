// Package cache memoizes enrichment lookups (web search results) so repeated
// queries do not hit external providers. Backends: in-process go-cache or a
// shared Redis instance.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Nithin218/MindMate-AI/config"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache is a byte-value lookup cache with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Close() error
}

// New creates a cache from configuration.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return &redisCache{client: client, timeout: cfg.Redis.Timeout}, nil
	case "memory", "":
		return &memoryCache{store: gocache.New(cfg.TTL, 2*cfg.TTL)}, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

type memoryCache struct {
	store *gocache.Cache
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	m.store.Set(key, value, ttl)
}

func (m *memoryCache) Close() error { return nil }

type redisCache struct {
	client  *redis.Client
	timeout time.Duration
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	// best effort; a failed write only costs a future lookup
	_ = r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Close() error { return r.client.Close() }
