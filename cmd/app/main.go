package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tripwise/cmd/fx/account_fx"
	"tripwise/cmd/fx/ai_fx"
	"tripwise/cmd/fx/cache_fx"
	"tripwise/cmd/fx/config_fx"
	"tripwise/cmd/fx/controllers_fx"
	"tripwise/cmd/fx/cron_fx"
	"tripwise/cmd/fx/db_fx"
	"tripwise/cmd/fx/expense_fx"
	"tripwise/cmd/fx/itinerary_fx"
	"tripwise/cmd/fx/logger_fx"
	"tripwise/cmd/fx/map_fx"
	"tripwise/cmd/fx/memcache_fx"
	"tripwise/cmd/fx/voice_fx"
	"tripwise/internal/infra"
	"tripwise/pkg/middleware"
)

func main() {
	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		cache_fx.Module,
		memcache_fx.Module,
		ai_fx.Module,
		account_fx.Module,
		map_fx.Module,
		itinerary_fx.Module,
		expense_fx.Module,
		voice_fx.Module,
		controllers_fx.Module,
		fx.Provide(provideRateLimiter, ProvideRouter),
		cron_fx.Module,

		fx.Invoke(StartServer),
	)

	app.Run()
}

// provideRateLimiter guards the routes that call paid upstream models.
func provideRateLimiter(cfg *infra.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.GenerateRatePerMinute, cfg.GenerateBurst)
}

func StartServer(lc fx.Lifecycle, cfg *infra.Config, engine *gin.Engine, log *zap.Logger) {
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.TraceHeader},
		ExposedHeaders:   []string{middleware.TraceHeader, "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler(engine)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("Starting HTTP server", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
