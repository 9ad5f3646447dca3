package commands

import (
	"context"
	"log/slog"
	"time"

	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"
)

const invalidateBackoff = 50 * time.Millisecond

// scheduleInvalidator drops a provider's cached slots after a committed change.
// Failures are retried a few times and then logged; the write already
// committed and the cache TTL bounds how long a stale entry can live.
type scheduleInvalidator struct {
	cache    shared.SlotCache
	attempts int
}

func newScheduleInvalidator(cache shared.SlotCache, cfg config.CacheConfig) scheduleInvalidator {
	attempts := cfg.InvalidateAttempts
	if attempts < 1 {
		attempts = 1
	}
	return scheduleInvalidator{cache: cache, attempts: attempts}
}

func (i scheduleInvalidator) invalidate(ctx context.Context, slug string) {
	ctx = context.WithoutCancel(ctx)
	for attempt := 1; ; attempt++ {
		err := i.cache.InvalidateAll(ctx, slug)
		if err == nil {
			return
		}
		if attempt >= i.attempts {
			slog.Error("slot cache invalidation failed",
				"provider_slug", slug,
				"attempts", attempt,
				"error", err.Error())
			return
		}
		slog.Warn("retrying slot cache invalidation",
			"provider_slug", slug,
			"attempt", attempt,
			"error", err.Error())
		time.Sleep(time.Duration(attempt) * invalidateBackoff)
	}
}
