package shared

import (
	"context"
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/provider"
	"booking-engine/internal/domain/service"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/timerange"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, reads CommandReads) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Rules() RuleRepository
	BlockedSlots() BlockedSlotRepository
	Bookings() BookingRepository
	Outbox() OutboxRepository
	Idempotency() IdempotencyRepository
	Reads() CommandReads
	DB() db.DBTX
}

// CommandReads are the lookups the write side needs. Inside a Tx they read
// through the transaction.
type CommandReads interface {
	ScheduleReads
	ProviderByID(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
	RuleByID(ctx context.Context, providerID, id uuid.UUID) (*availability.Rule, error)
	BookingForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	BookingByPaymentRef(ctx context.Context, paymentRef string) (*booking.Booking, error)
}

// ScheduleReads is everything slot generation reads from live storage.
type ScheduleReads interface {
	ProviderBySlug(ctx context.Context, slug string) (*provider.Provider, error)
	ServiceByID(ctx context.Context, providerID, id uuid.UUID) (*service.Service, error)
	RulesByProvider(ctx context.Context, providerID uuid.UUID) ([]*availability.Rule, error)
	BlockedInRange(ctx context.Context, providerID uuid.UUID, window timerange.Range) ([]*availability.BlockedSlot, error)
	// FindOverlappingBookings returns the windows of slot-occupying bookings
	// that overlap window.
	FindOverlappingBookings(ctx context.Context, providerID uuid.UUID, window timerange.Range, pendingOccupies bool) ([]timerange.Range, error)
}

type RuleRepository interface {
	Create(ctx context.Context, tx db.DBTX, r *availability.Rule) error
	Update(ctx context.Context, tx db.DBTX, r *availability.Rule) error
	Delete(ctx context.Context, tx db.DBTX, providerID, id uuid.UUID) error
}

type BlockedSlotRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *availability.BlockedSlot) error
	Delete(ctx context.Context, tx db.DBTX, providerID, id uuid.UUID) error
}

// BookingRepository persists bookings. occupies is stored alongside the row
// and drives the storage exclusion constraint.
type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking, occupies bool) error
	Update(ctx context.Context, tx db.DBTX, b *booking.Booking, occupies bool) error
}

type IdempotencyRepository interface {
	// Find ignores expired keys and returns nil for unknown ones.
	Find(ctx context.Context, tx db.DBTX, providerID uuid.UUID, key string, now time.Time) (*IdempotencyRecord, error)
	// Save reports a conflict while a live record holds the key.
	Save(ctx context.Context, tx db.DBTX, rec IdempotencyRecord) error
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, tx db.DBTX, msgs ...OutboxMessage) error
}

// OutboxStore is the relay's view of the outbox table.
type OutboxStore interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]OutboxMessage, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastErr string, retryAt time.Time) error
	// MarkDead parks a message that exhausted its attempts.
	MarkDead(ctx context.Context, id uuid.UUID, lastErr string) error
}
