package shared

import (
	"context"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/slot"

	"github.com/google/uuid"
)

// SlotCache is a read-through view of generated slots. Get and Put never
// fail the caller: adapter faults are logged and surface as a miss.
//
// Readers take the provider's Generation before loading live data and put
// the result under that generation. InvalidateAll advances the generation,
// so a fill that read data older than the invalidation can only land in a
// key no later reader asks for. Generation reports false when the cache
// cannot be trusted; callers then bypass it.
type SlotCache interface {
	Generation(ctx context.Context, slug string) (int64, bool)
	Get(ctx context.Context, key SlotKey) ([]slot.TimeSlot, bool)
	Put(ctx context.Context, key SlotKey, slots []slot.TimeSlot, ttl time.Duration)
	InvalidateAll(ctx context.Context, slug string) error
}

// PaymentGateway starts money movements. Outcomes come back asynchronously
// through the payment webhook.
type PaymentGateway interface {
	RequestDepositCapture(ctx context.Context, req booking.PaymentRequest) (string, error)
	RequestRefund(ctx context.Context, req booking.PaymentRequest) error
	VoidDeposit(ctx context.Context, req booking.PaymentRequest) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, payload []byte) error
	Close() error
}

type ManageTokenIssuer interface {
	GenerateManageToken(bookingID uuid.UUID) (string, error)
}
