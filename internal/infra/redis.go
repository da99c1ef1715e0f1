package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects when REDIS_URL is set. It returns nil, nil otherwise so
// callers fall back to in-process caches.
func InitRedis(cfg *Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, using in-memory caches")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	log.Info("Redis connected", zap.String("addr", opts.Addr))
	return client, nil
}
