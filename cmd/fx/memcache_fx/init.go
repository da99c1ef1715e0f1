package memcache_fx

import (
	"go.uber.org/fx"
	"tripwise/pkg/itinerary"
	mem "tripwise/pkg/memcache"
)

var Module = fx.Provide(
	provideRefreshTokens,
	providePlanCache,
	provideMapResponses)

func provideRefreshTokens() mem.RefreshTokenStore {
	return mem.NewRefreshTokens()
}

func providePlanCache() *mem.TTLCache[*itinerary.Document] {
	return mem.NewTTLCache[*itinerary.Document]()
}

// provideMapResponses backs the map cache when redis is not configured.
func provideMapResponses() *mem.TTLCache[[]byte] {
	return mem.NewTTLCache[[]byte]()
}
