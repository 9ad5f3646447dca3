//go:build unit

package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"booking-engine/internal/domain/slot"
	"booking-engine/internal/infra/cache"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*cache.RedisSlotCache, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.NewRedisSlotCache(rdb, config.CacheConfig{OpTimeout: time.Second}, logger)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return c, mock
}

func sampleSlots() []slot.TimeSlot {
	day := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	return []slot.TimeSlot{
		{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour), Available: true},
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour), Available: false},
	}
}

var key = shared.SlotKey{Slug: "acme", Generation: 3, Date: "2030-03-04", Duration: 60}

func TestRedisSlotCache_Generation(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the counter", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectGet("slotgen:acme").SetVal("3")

		gen, ok := c.Generation(ctx, "acme")

		require.True(t, ok)
		assert.Equal(t, int64(3), gen)
	})

	t.Run("missing counter is generation zero", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectGet("slotgen:acme").RedisNil()

		gen, ok := c.Generation(ctx, "acme")

		require.True(t, ok)
		assert.Zero(t, gen)
	})

	t.Run("redis failure disables the cache", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectGet("slotgen:acme").SetErr(errors.New("connection refused"))

		_, ok := c.Generation(ctx, "acme")

		assert.False(t, ok)
	})
}

func TestRedisSlotCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("hit decodes the stored slots", func(t *testing.T) {
		c, mock := newCache(t)
		payload, err := json.Marshal(sampleSlots())
		require.NoError(t, err)
		mock.ExpectGet("slots:acme:3:2030-03-04:60").SetVal(string(payload))

		got, ok := c.Get(ctx, key)

		require.True(t, ok)
		assert.Equal(t, sampleSlots(), got)
	})

	t.Run("absent key is a miss", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectGet("slots:acme:3:2030-03-04:60").RedisNil()

		_, ok := c.Get(ctx, key)

		assert.False(t, ok)
	})

	t.Run("redis failure is a miss", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectGet("slots:acme:3:2030-03-04:60").SetErr(errors.New("connection refused"))

		_, ok := c.Get(ctx, key)

		assert.False(t, ok)
	})

	t.Run("garbage entry is a miss", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectGet("slots:acme:3:2030-03-04:60").SetVal("{not json")

		_, ok := c.Get(ctx, key)

		assert.False(t, ok)
	})
}

func TestRedisSlotCache_Put(t *testing.T) {
	ctx := context.Background()
	payload, err := json.Marshal(sampleSlots())
	require.NoError(t, err)

	t.Run("writes json with the ttl", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectSet("slots:acme:3:2030-03-04:60", payload, 2*time.Minute).SetVal("OK")

		c.Put(ctx, key, sampleSlots(), 2*time.Minute)
	})

	t.Run("write failure is swallowed", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectSet("slots:acme:3:2030-03-04:60", payload, 2*time.Minute).SetErr(errors.New("READONLY"))

		assert.NotPanics(t, func() { c.Put(ctx, key, sampleSlots(), 2*time.Minute) })
	})
}

func TestRedisSlotCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()

	t.Run("unlinks every page of matching keys", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectIncr("slotgen:acme").SetVal(4)
		mock.ExpectScan(0, "slots:acme:*", 100).SetVal([]string{"slots:acme:3:2030-03-04:60", "slots:acme:2030-03-05:30"}, 17)
		mock.ExpectUnlink("slots:acme:3:2030-03-04:60", "slots:acme:2030-03-05:30").SetVal(2)
		mock.ExpectScan(17, "slots:acme:*", 100).SetVal([]string{"slots:acme:3:2030-03-06:60"}, 0)
		mock.ExpectUnlink("slots:acme:3:2030-03-06:60").SetVal(1)

		require.NoError(t, c.InvalidateAll(ctx, "acme"))
	})

	t.Run("empty page skips unlink", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectIncr("slotgen:acme").SetVal(4)
		mock.ExpectScan(0, "slots:acme:*", 100).SetVal(nil, 0)

		require.NoError(t, c.InvalidateAll(ctx, "acme"))
	})

	t.Run("scan failure is reported", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectIncr("slotgen:acme").SetVal(4)
		mock.ExpectScan(0, "slots:acme:*", 100).SetErr(errors.New("connection reset"))

		assert.Error(t, c.InvalidateAll(ctx, "acme"))
	})

	t.Run("generation bump failure is reported before any unlink", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectIncr("slotgen:acme").SetErr(errors.New("READONLY"))

		assert.Error(t, c.InvalidateAll(ctx, "acme"))
	})

	t.Run("unlink failure is reported", func(t *testing.T) {
		c, mock := newCache(t)
		mock.ExpectIncr("slotgen:acme").SetVal(4)
		mock.ExpectScan(0, "slots:acme:*", 100).SetVal([]string{"slots:acme:3:2030-03-04:60"}, 0)
		mock.ExpectUnlink("slots:acme:3:2030-03-04:60").SetErr(errors.New("connection reset"))

		assert.Error(t, c.InvalidateAll(ctx, "acme"))
	})
}

func TestNoopSlotCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewNoopSlotCache()

	_, cacheable := c.Generation(ctx, "acme")
	c.Put(ctx, key, sampleSlots(), time.Minute)
	_, ok := c.Get(ctx, key)

	assert.False(t, cacheable)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateAll(ctx, "acme"))
}
