package booking

import (
	"time"

	"booking-engine/internal/domain/actor"

	"github.com/google/uuid"
)

type EventType string

const (
	EventConfirmed       EventType = "booking.confirmed.v1"
	EventCancelled       EventType = "booking.cancelled.v1"
	EventNoShow          EventType = "booking.no_show.v1"
	EventCompleted       EventType = "booking.completed.v1"
	EventDisputeOpened   EventType = "booking.dispute_opened.v1"
	EventDisputeResolved EventType = "booking.dispute_resolved.v1"
)

// Notification is the outbound message a transition produces for the party
// that did not trigger it.
type Notification struct {
	Type         EventType  `json:"type"`
	BookingID    uuid.UUID  `json:"bookingId"`
	ProviderID   uuid.UUID  `json:"providerId"`
	Recipient    actor.Role `json:"recipient"`
	DepositCents int64      `json:"depositCents"`
	RefundCents  int64      `json:"refundCents"`
	FeeCents     int64      `json:"feeCents"`
	OccurredAt   time.Time  `json:"occurredAt"`
}

type PaymentKind string

const (
	PaymentCapture PaymentKind = "capture"
	PaymentRefund  PaymentKind = "refund"
	PaymentVoid    PaymentKind = "void"
)

// PaymentRequest is the intended money movement handed to the payment
// boundary. Completion comes back through Confirm or ConfirmRefund.
type PaymentRequest struct {
	Kind        PaymentKind `json:"kind"`
	BookingID   uuid.UUID   `json:"bookingId"`
	AmountCents int64       `json:"amountCents"`
	PaymentRef  string      `json:"paymentRef,omitempty"`
	Email       string      `json:"email,omitempty"`
	RequestedAt time.Time   `json:"requestedAt"`
}
