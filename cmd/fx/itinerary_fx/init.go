package itinerary_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"tripwise/internal/infra"
	"tripwise/internal/repositories"
	"tripwise/internal/services"
	"tripwise/pkg/itinerary"
	mem "tripwise/pkg/memcache"
	"tripwise/pkg/utils"
)

var Module = fx.Provide(
	provideItineraryRepo,
	provideEmbeddingRepo,
	provideItineraryService,
	provideExportService)

func provideItineraryRepo(db *gorm.DB) repositories.ItineraryRepository {
	return repositories.NewItineraryRepository(db)
}

func provideEmbeddingRepo(db *gorm.DB) repositories.ItineraryEmbeddingRepository {
	return repositories.NewItineraryEmbeddingRepository(db)
}

func provideItineraryService(
	itineraryRepo repositories.ItineraryRepository,
	embeddingRepo repositories.ItineraryEmbeddingRepository,
	ai utils.AIClientInterface,
	planCache *mem.TTLCache[*itinerary.Document],
	log *zap.Logger,
) services.ItineraryServiceInterface {
	return services.NewItineraryService(itineraryRepo, embeddingRepo, ai, planCache, log.Named("itinerary"))
}

func provideExportService(
	itineraries services.ItineraryServiceInterface,
	maps services.MapServiceInterface,
	cfg *infra.Config,
	log *zap.Logger,
) services.ExportServiceInterface {
	return services.NewExportService(itineraries, maps, cfg.PublicBaseURL, cfg.PDFFontPath, log.Named("export"))
}
