// Package admission decides whether a booking may take a slot. It always reads
// live storage; the slot cache is never consulted here.
package admission

import (
	"context"
	"time"

	"booking-engine/internal/domain/provider"
	"booking-engine/internal/domain/slot"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timerange"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrSlotUnavailable = errs.Conflict("slot is no longer available")
	ErrSlotNotOffered  = errs.Validation("requested start is not an offered slot")
)

type Checker struct {
	pendingOccupies bool
}

func NewChecker(cfg config.BookingConfig) *Checker {
	return &Checker{pendingOccupies: cfg.PendingOccupiesSlot}
}

func (c *Checker) PendingOccupies() bool {
	return c.pendingOccupies
}

// IsFree reports whether [start, start+minutes) overlaps no occupying booking
// and no blocked interval.
func (c *Checker) IsFree(ctx context.Context, reads shared.ScheduleReads, providerID uuid.UUID, start time.Time, minutes int) (bool, error) {
	window := timerange.FromDuration(start, minutes)

	booked, err := reads.FindOverlappingBookings(ctx, providerID, window, c.pendingOccupies)
	if err != nil {
		return false, err
	}
	if window.OverlapsAny(booked) {
		return false, nil
	}

	blocks, err := reads.BlockedInRange(ctx, providerID, window)
	if err != nil {
		return false, err
	}
	for _, b := range blocks {
		if window.Overlaps(b.Range()) {
			return false, nil
		}
	}
	return true, nil
}

// Admit rejects a start that is not one of the provider's generated slots for
// that day, then runs IsFree.
func (c *Checker) Admit(ctx context.Context, reads shared.ScheduleReads, p *provider.Provider, start time.Time, minutes int, now time.Time) error {
	loc, err := p.Location()
	if err != nil {
		return err
	}

	slots, err := shared.BuildDay(ctx, reads, shared.DayRequest{
		Provider:        p,
		Date:            start.In(loc),
		Duration:        minutes,
		PendingOccupies: c.pendingOccupies,
		Now:             now,
	})
	if err != nil {
		return err
	}
	if !slot.IsOffered(slots, start) {
		return ErrSlotNotOffered
	}

	free, err := c.IsFree(ctx, reads, p.ID, start, minutes)
	if err != nil {
		return err
	}
	if !free {
		return ErrSlotUnavailable
	}
	return nil
}
