// Package cache holds the slot cache adapters.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"booking-engine/internal/domain/slot"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
)

const scanCount = 100

type RedisSlotCache struct {
	rdb       *redis.Client
	opTimeout time.Duration
	logger    *slog.Logger
}

var _ shared.SlotCache = (*RedisSlotCache)(nil)

func NewRedisSlotCache(rdb *redis.Client, cfg config.CacheConfig, logger *slog.Logger) *RedisSlotCache {
	return &RedisSlotCache{
		rdb:       rdb,
		opTimeout: cfg.OpTimeout,
		logger:    logger.With("component", "slot_cache"),
	}
}

// Generation reads the provider's counter. A missing counter is generation
// zero; a Redis fault makes the cache unusable for this request.
func (c *RedisSlotCache) Generation(ctx context.Context, slug string) (int64, bool) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	gen, err := c.rdb.Get(ctx, shared.SlotGenerationKey(slug)).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		c.logger.Warn("slot cache generation read failed", "provider_slug", slug, "error", err.Error())
		return 0, false
	}
}

// Get reports a miss for absent keys, undecodable entries and Redis faults alike.
func (c *RedisSlotCache) Get(ctx context.Context, key shared.SlotKey) ([]slot.TimeSlot, bool) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	raw, err := c.rdb.Get(ctx, key.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("slot cache read failed", "key", key.String(), "error", err.Error())
		}
		return nil, false
	}

	var slots []slot.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.logger.Warn("dropping undecodable slot cache entry", "key", key.String(), "error", err.Error())
		return nil, false
	}
	return slots, true
}

func (c *RedisSlotCache) Put(ctx context.Context, key shared.SlotKey, slots []slot.TimeSlot, ttl time.Duration) {
	payload, err := json.Marshal(slots)
	if err != nil {
		c.logger.Warn("slot cache encode failed", "key", key.String(), "error", err.Error())
		return
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.rdb.Set(ctx, key.String(), payload, ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", "key", key.String(), "error", err.Error())
	}
}

// InvalidateAll advances the provider's generation, then unlinks the cached
// days it left behind. Keys are found with SCAN so a large keyspace never
// blocks the server.
func (c *RedisSlotCache) InvalidateAll(ctx context.Context, slug string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.rdb.Incr(ctx, shared.SlotGenerationKey(slug)).Err(); err != nil {
		return errs.Wrap(err, "failed to advance slot cache generation")
	}

	pattern := shared.SlotKeyPattern(slug)
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return errs.Wrap(err, "failed to scan slot cache keys")
		}
		if len(keys) > 0 {
			if err := c.rdb.Unlink(ctx, keys...).Err(); err != nil {
				return errs.Wrap(err, "failed to unlink slot cache keys")
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *RedisSlotCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opTimeout)
}
