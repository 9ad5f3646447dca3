package bootstrap

import (
	"context"
	"log/slog"

	"booking-engine/internal/infra/cache"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewSlotCache,
	),
)

// NewSlotCache falls back to a no-op cache without REDIS_ADDR. An unreachable
// Redis at startup is logged, not fatal: every read falls through to storage.
func NewSlotCache(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) shared.SlotCache {
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, slot cache disabled")
		return cache.NewNoopSlotCache()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable, serving slots from storage", "addr", cfg.Redis.Addr, "error", err)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})

	return cache.NewRedisSlotCache(rdb, cfg.Cache, logger)
}
