package availability

import (
	"time"

	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timerange"

	"github.com/google/uuid"
)

var ErrBlockedEndNotAfterStart = errs.Validation("blocked slot end must be after start")

// BlockedSlot is an absolute interval during which the provider takes no bookings.
type BlockedSlot struct {
	id         uuid.UUID
	providerID uuid.UUID
	start      time.Time
	end        time.Time
	reason     Reason
	recurrence Recurrence
	createdAt  time.Time
}

func NewBlockedSlot(id, providerID uuid.UUID, start, end time.Time, reason, recurrence string, now time.Time) (*BlockedSlot, error) {
	if !end.After(start) {
		return nil, ErrBlockedEndNotAfterStart
	}
	rsn, err := NewReason(reason)
	if err != nil {
		return nil, err
	}
	rec, err := NewRecurrence(recurrence)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &BlockedSlot{
		id:         id,
		providerID: providerID,
		start:      start.UTC(),
		end:        end.UTC(),
		reason:     rsn,
		recurrence: rec,
		createdAt:  now,
	}, nil
}

func ReconstructBlockedSlot(id, providerID uuid.UUID, start, end time.Time, reason string, recurrence Recurrence, createdAt time.Time) *BlockedSlot {
	return &BlockedSlot{
		id:         id,
		providerID: providerID,
		start:      start,
		end:        end,
		reason:     Reason{value: reason},
		recurrence: recurrence,
		createdAt:  createdAt,
	}
}

func (b *BlockedSlot) ID() uuid.UUID          { return b.id }
func (b *BlockedSlot) ProviderID() uuid.UUID  { return b.providerID }
func (b *BlockedSlot) Start() time.Time       { return b.start }
func (b *BlockedSlot) End() time.Time         { return b.end }
func (b *BlockedSlot) Reason() Reason         { return b.reason }
func (b *BlockedSlot) Recurrence() Recurrence { return b.recurrence }
func (b *BlockedSlot) CreatedAt() time.Time   { return b.createdAt }

// Range treats recurring blocks as the single concrete interval they were created with.
func (b *BlockedSlot) Range() timerange.Range {
	return timerange.Range{Start: b.start, End: b.end}
}
