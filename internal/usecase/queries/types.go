package queries

import (
	"time"

	"github.com/google/uuid"
)

// RuleView represents read-optimized availability rule data
type RuleView struct {
	ID           uuid.UUID `json:"id"`
	ProviderID   uuid.UUID `json:"provider_id"`
	Weekday      int       `json:"weekday"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	BreakStart   *string   `json:"break_start,omitempty"`
	BreakEnd     *string   `json:"break_end,omitempty"`
	SlotDuration int       `json:"slot_duration"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BlockedSlotView struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Reason     string    `json:"reason,omitempty"`
	Recurrence string    `json:"recurrence"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingView is the full booking as shown to the provider or the customer
// holding its manage token.
type BookingView struct {
	ID                 uuid.UUID  `json:"id"`
	ProviderID         uuid.UUID  `json:"provider_id"`
	ServiceID          uuid.UUID  `json:"service_id"`
	ServiceName        string     `json:"service_name"`
	CustomerName       string     `json:"customer_name"`
	CustomerEmail      string     `json:"customer_email"`
	CustomerPhone      string     `json:"customer_phone,omitempty"`
	BookingDate        time.Time  `json:"booking_date"`
	Duration           int        `json:"duration"`
	DepositCents       int64      `json:"deposit_cents"`
	Status             string     `json:"status"`
	DepositStatus      string     `json:"deposit_status"`
	DisputeStatus      string     `json:"dispute_status"`
	RefundCents        int64      `json:"refund_cents"`
	FeeCents           int64      `json:"fee_cents"`
	RefundedCents      int64      `json:"refunded_cents"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty"`
	DisputeReason      string     `json:"dispute_reason,omitempty"`
	ResolutionNotes    string     `json:"resolution_notes,omitempty"`
	DisputeResolvedAt  *time.Time `json:"dispute_resolved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type BookingListItem struct {
	ID            uuid.UUID `json:"id"`
	ServiceName   string    `json:"service_name"`
	CustomerName  string    `json:"customer_name"`
	BookingDate   time.Time `json:"booking_date"`
	Duration      int       `json:"duration"`
	Status        string    `json:"status"`
	DepositStatus string    `json:"deposit_status"`
	DisputeStatus string    `json:"dispute_status"`
	CreatedAt     time.Time `json:"created_at"`
}
