package queries

import (
	"context"
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/slot"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrProviderNotFound = errs.NotFound("provider not found")
	ErrServiceNotFound  = errs.NotFound("service not found")
	ErrDurationRequired = errs.Validation("either duration or serviceId is required")
)

type SlotQuery struct {
	ProviderSlug string
	Date         string
	Duration     int
	ServiceID    *uuid.UUID
}

type SlotQueries interface {
	ForDay(ctx context.Context, q SlotQuery) ([]slot.TimeSlot, error)
}

type slotQueriesImpl struct {
	reads           shared.ScheduleReads
	cache           shared.SlotCache
	group           singleflight.Group
	ttl             time.Duration
	pendingOccupies bool
	clock           clock.Clock
}

func NewSlotQueries(reads shared.ScheduleReads, cache shared.SlotCache, clk clock.Clock, cacheCfg config.CacheConfig, bookingCfg config.BookingConfig) SlotQueries {
	return &slotQueriesImpl{
		reads:           reads,
		cache:           cache,
		ttl:             cacheCfg.SlotTTL,
		pendingOccupies: bookingCfg.PendingOccupiesSlot,
		clock:           clk,
	}
}

// ForDay serves the day's slots from the cache, computing and storing them on
// a miss. Concurrent misses for one key share a single computation.
func (q *slotQueriesImpl) ForDay(ctx context.Context, sq SlotQuery) ([]slot.TimeSlot, error) {
	p, err := q.reads.ProviderBySlug(ctx, sq.ProviderSlug)
	if err != nil {
		return nil, notFoundAs(err, ErrProviderNotFound)
	}

	duration, err := q.resolveDuration(ctx, p.ID, sq)
	if err != nil {
		return nil, err
	}

	loc, err := p.Location()
	if err != nil {
		return nil, err
	}
	date, err := slot.ParseDate(sq.Date, loc)
	if err != nil {
		return nil, err
	}

	req := shared.DayRequest{
		Provider:        p,
		Date:            date,
		Duration:        duration,
		PendingOccupies: q.pendingOccupies,
	}

	// The generation must be read before any live data is loaded.
	gen, cacheable := q.cache.Generation(ctx, p.Slug)
	if !cacheable {
		req.Now = q.clock.Now()
		slots, err := shared.BuildDay(ctx, q.reads, req)
		if err != nil {
			return nil, err
		}
		return nonNil(slots), nil
	}

	key := shared.SlotKey{Slug: p.Slug, Generation: gen, Date: date.Format(slot.DateLayout), Duration: duration}
	if cached, ok := q.cache.Get(ctx, key); ok {
		return dropStarted(cached, q.clock.Now()), nil
	}

	ch := q.group.DoChan(key.String(), func() (any, error) {
		// Shared by every waiter, so it must outlive the first caller.
		fillCtx := context.WithoutCancel(ctx)
		req.Now = q.clock.Now()
		slots, ferr := shared.BuildDay(fillCtx, q.reads, req)
		if ferr != nil {
			return nil, ferr
		}
		q.cache.Put(fillCtx, key, slots, q.ttl)
		return slots, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		slots, _ := res.Val.([]slot.TimeSlot)
		return nonNil(slots), nil
	}
}

func (q *slotQueriesImpl) resolveDuration(ctx context.Context, providerID uuid.UUID, sq SlotQuery) (int, error) {
	if sq.ServiceID != nil {
		svc, err := q.reads.ServiceByID(ctx, providerID, *sq.ServiceID)
		if err != nil {
			return 0, notFoundAs(err, ErrServiceNotFound)
		}
		if !svc.IsActive() {
			return 0, ErrServiceNotFound
		}
		return svc.Duration(), nil
	}
	if sq.Duration == 0 {
		return 0, ErrDurationRequired
	}
	if err := availability.ValidateSlotDuration(sq.Duration); err != nil {
		return 0, err
	}
	return sq.Duration, nil
}

// dropStarted removes slots that began while the entry sat in the cache.
func dropStarted(slots []slot.TimeSlot, now time.Time) []slot.TimeSlot {
	out := make([]slot.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Start.After(now) {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(slots []slot.TimeSlot) []slot.TimeSlot {
	if slots == nil {
		return []slot.TimeSlot{}
	}
	return slots
}

func notFoundAs(err, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return sentinel
	}
	return err
}
