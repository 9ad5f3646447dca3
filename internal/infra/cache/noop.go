package cache

import (
	"context"
	"time"

	"booking-engine/internal/domain/slot"
	"booking-engine/internal/usecase/shared"
)

// NoopSlotCache always misses. It stands in when Redis is not configured.
type NoopSlotCache struct{}

var _ shared.SlotCache = NoopSlotCache{}

func NewNoopSlotCache() NoopSlotCache { return NoopSlotCache{} }

func (NoopSlotCache) Generation(context.Context, string) (int64, bool) { return 0, false }

func (NoopSlotCache) Get(context.Context, shared.SlotKey) ([]slot.TimeSlot, bool) { return nil, false }

func (NoopSlotCache) Put(context.Context, shared.SlotKey, []slot.TimeSlot, time.Duration) {}

func (NoopSlotCache) InvalidateAll(context.Context, string) error { return nil }
