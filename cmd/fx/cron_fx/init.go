package cron_fx

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tripwise/pkg/itinerary"
	mem "tripwise/pkg/memcache"
	"tripwise/pkg/middleware"
)

const (
	purgeSchedule = "@every 10m"
	limiterIdle   = 30 * time.Minute
)

var Module = fx.Invoke(registerPurgeJobs)

// registerPurgeJobs drops expired refresh tokens, cache entries and idle
// rate-limit buckets so the in-process stores stay bounded.
func registerPurgeJobs(
	lc fx.Lifecycle,
	refreshTokens mem.RefreshTokenStore,
	planCache *mem.TTLCache[*itinerary.Document],
	mapResponses *mem.TTLCache[[]byte],
	limiter *middleware.RateLimiter,
	log *zap.Logger,
) error {
	log = log.Named("cron")
	c := cron.New(cron.WithLogger(cron.PrintfLogger(zap.NewStdLog(log))))

	_, err := c.AddFunc(purgeSchedule, func() {
		tokens := refreshTokens.Purge()
		plans := planCache.Purge()
		maps := mapResponses.Purge()
		visitors := limiter.Purge(limiterIdle)
		log.Debug("purged expired entries",
			zap.Int("refresh_tokens", tokens),
			zap.Int("plans", plans),
			zap.Int("map_responses", maps),
			zap.Int("rate_limit_visitors", visitors))
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
