package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	mem "tripwise/pkg/memcache"
)

// MapCache stores encoded map answers (geocodes, weather) keyed by query.
type MapCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type memoryMapCache struct {
	cache *mem.TTLCache[[]byte]
}

func NewMemoryMapCache(cache *mem.TTLCache[[]byte]) MapCache {
	return &memoryMapCache{cache: cache}
}

func (m *memoryMapCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.cache.Get(key)
}

func (m *memoryMapCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.cache.Set(key, value, ttl)
}

type redisMapCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisMapCache shares map answers across instances. Redis errors degrade
// to cache misses.
func NewRedisMapCache(client *redis.Client, logger *zap.Logger) MapCache {
	return &redisMapCache{client: client, logger: logger}
}

func (r *redisMapCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, "tripwise:map:"+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("redis map cache read", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (r *redisMapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, "tripwise:map:"+key, value, ttl).Err(); err != nil {
		r.logger.Warn("redis map cache write", zap.String("key", key), zap.Error(err))
	}
}
