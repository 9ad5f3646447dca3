package shared

import (
	"context"
	"time"

	"booking-engine/internal/domain/provider"
	"booking-engine/internal/domain/slot"
	"booking-engine/internal/pkg/timerange"
)

// DayRequest names one provider-local calendar day and slot length.
type DayRequest struct {
	Provider        *provider.Provider
	Date            time.Time
	Duration        int
	PendingOccupies bool
	Now             time.Time
}

// BuildDay loads rules, blocks and occupying bookings for the day from live
// storage and runs the slot generator over them.
func BuildDay(ctx context.Context, reads ScheduleReads, req DayRequest) ([]slot.TimeSlot, error) {
	loc, err := req.Provider.Location()
	if err != nil {
		return nil, err
	}
	day := slot.DayBounds(req.Date, loc)

	rules, err := reads.RulesByProvider(ctx, req.Provider.ID)
	if err != nil {
		return nil, err
	}
	blocks, err := reads.BlockedInRange(ctx, req.Provider.ID, day)
	if err != nil {
		return nil, err
	}
	booked, err := reads.FindOverlappingBookings(ctx, req.Provider.ID, day, req.PendingOccupies)
	if err != nil {
		return nil, err
	}

	blocked := make([]timerange.Range, 0, len(blocks))
	for _, b := range blocks {
		blocked = append(blocked, b.Range())
	}

	return slot.GenerateDay(slot.Input{
		Date:     day.Start,
		Duration: req.Duration,
		Location: loc,
		Booked:   booked,
		Blocked:  blocked,
		Now:      req.Now,
	}, rules), nil
}
