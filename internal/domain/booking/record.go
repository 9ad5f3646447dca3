package booking

import (
	"time"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/policy"

	"github.com/google/uuid"
)

// Record is the flat persisted form of a Booking.
type Record struct {
	ID                 uuid.UUID
	ProviderID         uuid.UUID
	ServiceID          uuid.UUID
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	Start              time.Time
	Duration           int
	DepositCents       int64
	Snapshot           policy.Snapshot
	Status             Status
	DepositStatus      DepositStatus
	DisputeStatus      DisputeStatus
	PaymentRef         string
	CancelledAt        *time.Time
	CancellationReason string
	CancelledBy        actor.Role
	RefundCents        int64
	FeeCents           int64
	RefundedCents      int64
	ConfirmedAt        *time.Time
	CompletedAt        *time.Time
	NoShowAt           *time.Time
	DisputeReason      string
	DisputeOpenedAt    *time.Time
	ResolutionNotes    string
	DisputeResolvedAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Reconstruct rebuilds a persisted booking without validation.
func Reconstruct(r Record) *Booking {
	return &Booking{
		id:                 r.ID,
		providerID:         r.ProviderID,
		serviceID:          r.ServiceID,
		customer:           Customer{name: r.CustomerName, email: r.CustomerEmail, phone: r.CustomerPhone},
		start:              r.Start,
		duration:           r.Duration,
		depositCents:       r.DepositCents,
		snapshot:           r.Snapshot,
		status:             r.Status,
		depositStatus:      r.DepositStatus,
		disputeStatus:      r.DisputeStatus,
		paymentRef:         r.PaymentRef,
		cancelledAt:        r.CancelledAt,
		cancellationReason: r.CancellationReason,
		cancelledBy:        r.CancelledBy,
		refundCents:        r.RefundCents,
		feeCents:           r.FeeCents,
		refundedCents:      r.RefundedCents,
		confirmedAt:        r.ConfirmedAt,
		completedAt:        r.CompletedAt,
		noShowAt:           r.NoShowAt,
		disputeReason:      r.DisputeReason,
		disputeOpenedAt:    r.DisputeOpenedAt,
		resolutionNotes:    r.ResolutionNotes,
		disputeResolvedAt:  r.DisputeResolvedAt,
		createdAt:          r.CreatedAt,
		updatedAt:          r.UpdatedAt,
	}
}

func (b *Booking) Record() Record {
	return Record{
		ID:                 b.id,
		ProviderID:         b.providerID,
		ServiceID:          b.serviceID,
		CustomerName:       b.customer.name,
		CustomerEmail:      b.customer.email,
		CustomerPhone:      b.customer.phone,
		Start:              b.start,
		Duration:           b.duration,
		DepositCents:       b.depositCents,
		Snapshot:           b.snapshot,
		Status:             b.status,
		DepositStatus:      b.depositStatus,
		DisputeStatus:      b.disputeStatus,
		PaymentRef:         b.paymentRef,
		CancelledAt:        b.cancelledAt,
		CancellationReason: b.cancellationReason,
		CancelledBy:        b.cancelledBy,
		RefundCents:        b.refundCents,
		FeeCents:           b.feeCents,
		RefundedCents:      b.refundedCents,
		ConfirmedAt:        b.confirmedAt,
		CompletedAt:        b.completedAt,
		NoShowAt:           b.noShowAt,
		DisputeReason:      b.disputeReason,
		DisputeOpenedAt:    b.disputeOpenedAt,
		ResolutionNotes:    b.resolutionNotes,
		DisputeResolvedAt:  b.disputeResolvedAt,
		CreatedAt:          b.createdAt,
		UpdatedAt:          b.updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID                 { return b.id }
func (b *Booking) ProviderID() uuid.UUID         { return b.providerID }
func (b *Booking) ServiceID() uuid.UUID          { return b.serviceID }
func (b *Booking) Customer() Customer            { return b.customer }
func (b *Booking) Start() time.Time              { return b.start }
func (b *Booking) Duration() int                 { return b.duration }
func (b *Booking) DepositCents() int64           { return b.depositCents }
func (b *Booking) Snapshot() policy.Snapshot     { return b.snapshot }
func (b *Booking) Status() Status                { return b.status }
func (b *Booking) DepositStatus() DepositStatus  { return b.depositStatus }
func (b *Booking) DisputeStatus() DisputeStatus  { return b.disputeStatus }
func (b *Booking) PaymentRef() string            { return b.paymentRef }
func (b *Booking) RefundCents() int64            { return b.refundCents }
func (b *Booking) FeeCents() int64               { return b.feeCents }
func (b *Booking) RefundedCents() int64          { return b.refundedCents }
func (b *Booking) CancelledAt() *time.Time       { return b.cancelledAt }
func (b *Booking) CancellationReason() string    { return b.cancellationReason }
func (b *Booking) CancelledBy() actor.Role       { return b.cancelledBy }
func (b *Booking) DisputeReason() string         { return b.disputeReason }
func (b *Booking) ResolutionNotes() string       { return b.resolutionNotes }
func (b *Booking) DisputeResolvedAt() *time.Time { return b.disputeResolvedAt }
func (b *Booking) CreatedAt() time.Time          { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time          { return b.updatedAt }
