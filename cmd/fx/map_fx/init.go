package map_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tripwise/internal/infra"
	"tripwise/internal/services"
)

var Module = fx.Provide(provideMapService)

func provideMapService(cfg *infra.Config, cache services.MapCache, log *zap.Logger) services.MapServiceInterface {
	if cfg.AmapKey == "" {
		log.Warn("AMAP_API_KEY not set, map endpoints will answer 503")
	}
	return services.NewMapService(cfg.AmapKey, services.DefaultAmapBaseURL, cache, log.Named("map"))
}
