package cache_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tripwise/internal/infra"
	"tripwise/internal/services"
	mem "tripwise/pkg/memcache"
)

// Module provides the optional redis client and the map cache built on it.
var Module = fx.Provide(
	provideRedis,
	provideMapCache)

func provideRedis(lc fx.Lifecycle, cfg *infra.Config, log *zap.Logger) (*redis.Client, error) {
	client, err := infra.InitRedis(cfg, log)
	if err != nil || client == nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideMapCache(client *redis.Client, local *mem.TTLCache[[]byte], log *zap.Logger) services.MapCache {
	if client != nil {
		return services.NewRedisMapCache(client, log)
	}
	return services.NewMemoryMapCache(local)
}
