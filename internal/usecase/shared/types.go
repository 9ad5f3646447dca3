package shared

import (
	"encoding/json"
	"fmt"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	slotKeyPrefix        = "slots:"
	slotGenerationPrefix = "slotgen:"
)

// SlotKey identifies one cached slot sequence. Generation is the provider's
// cache generation at the time the entry was computed; entries of an older
// generation are never read again.
type SlotKey struct {
	Slug       string
	Generation int64
	Date       string
	Duration   int
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s%s:%d:%s:%d", slotKeyPrefix, k.Slug, k.Generation, k.Date, k.Duration)
}

// SlotGenerationKey holds the provider's generation counter. It lives outside
// the slots: prefix so SlotKeyPattern never matches it.
func SlotGenerationKey(slug string) string {
	return slotGenerationPrefix + slug
}

// SlotKeyPattern matches every cached entry of one provider.
func SlotKeyPattern(slug string) string {
	return slotKeyPrefix + slug + ":*"
}

// IdempotencyRecord ties a client supplied key to the booking it created.
type IdempotencyRecord struct {
	ProviderID  uuid.UUID
	Key         string
	RequestHash string
	BookingID   uuid.UUID
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type OutboxKind string

const (
	OutboxNotification OutboxKind = "notification"
	OutboxPayment      OutboxKind = "payment"
)

type OutboxMessage struct {
	ID          uuid.UUID
	Kind        OutboxKind
	Topic       string
	AggregateID uuid.UUID
	Payload     []byte
	Attempts    int
	AvailableAt time.Time
}

const paymentTopicPrefix = "payment."

// OutboxFrom drains the booking's pending notifications and payment requests
// into outbox messages.
func OutboxFrom(b *booking.Booking, now time.Time) ([]OutboxMessage, error) {
	var out []OutboxMessage
	for _, n := range b.PullNotifications() {
		payload, err := json.Marshal(n)
		if err != nil {
			return nil, errs.Wrap(err, "failed to encode notification")
		}
		out = append(out, OutboxMessage{
			ID:          uuid.New(),
			Kind:        OutboxNotification,
			Topic:       string(n.Type),
			AggregateID: n.BookingID,
			Payload:     payload,
			AvailableAt: now,
		})
	}
	for _, p := range b.PullPaymentRequests() {
		payload, err := json.Marshal(p)
		if err != nil {
			return nil, errs.Wrap(err, "failed to encode payment request")
		}
		out = append(out, OutboxMessage{
			ID:          uuid.New(),
			Kind:        OutboxPayment,
			Topic:       paymentTopicPrefix + string(p.Kind),
			AggregateID: p.BookingID,
			Payload:     payload,
			AvailableAt: now,
		})
	}
	return out, nil
}
