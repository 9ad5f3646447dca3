package booking

import (
	"strings"
	"time"
	"unicode/utf8"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/policy"
	"booking-engine/internal/domain/service"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timerange"

	"github.com/google/uuid"
)

var (
	ErrInvalidCustomerName = errs.Validation("customer name is required and must be at most 200 characters")
	ErrInvalidEmail        = errs.Validation("invalid email format")
	ErrInvalidPhone        = errs.Validation("invalid phone number")
	ErrStartInPast         = errs.Validation("booking start must be in the future")
	ErrReasonRequired      = errs.Validation("dispute reason is required")
	ErrReasonTooLong       = errs.Validation("reason must be at most 2000 characters")
	ErrNotesTooLong        = errs.Validation("resolution notes must be at most 2000 characters")
	ErrInvalidResolution   = errs.Validation("resolution must be resolved_customer or resolved_provider")

	ErrInvalidTransition  = errs.Conflict("invalid booking state transition")
	ErrNotStarted         = errs.Conflict("booking has not started yet")
	ErrNotFinished        = errs.Conflict("booking has not finished yet")
	ErrDisputeExists      = errs.Conflict("a dispute was already opened for this booking")
	ErrDisputeNotOpen     = errs.Conflict("no open dispute for this booking")
	ErrNoRefundPending    = errs.Conflict("no refund is pending for this booking")
	ErrBookingNotFound    = errs.NotFound("booking not found")
	ErrActionNotPermitted = errs.Forbidden("actor may not perform this action")
)

type Booking struct {
	id            uuid.UUID
	providerID    uuid.UUID
	serviceID     uuid.UUID
	customer      Customer
	start         time.Time
	duration      int
	depositCents  int64
	snapshot      policy.Snapshot
	status        Status
	depositStatus DepositStatus
	disputeStatus DisputeStatus
	paymentRef    string

	cancelledAt        *time.Time
	cancellationReason string
	cancelledBy        actor.Role
	refundCents        int64
	feeCents           int64
	refundedCents      int64
	confirmedAt        *time.Time
	completedAt        *time.Time
	noShowAt           *time.Time

	disputeReason     string
	disputeOpenedAt   *time.Time
	resolutionNotes   string
	disputeResolvedAt *time.Time

	createdAt time.Time
	updatedAt time.Time

	notifications []Notification
	payments      []PaymentRequest
}

type NewParams struct {
	ID         uuid.UUID
	ProviderID uuid.UUID
	Service    *service.Service
	Customer   Customer
	Start      time.Time
}

// New creates a pending booking, copying duration, deposit and policy from
// the service so later service edits do not reach it.
func New(p NewParams, now time.Time) (*Booking, error) {
	if err := p.Service.Bookable(); err != nil {
		return nil, err
	}
	if timerange.IsPast(p.Start, now) {
		return nil, ErrStartInPast
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	b := &Booking{
		id:            id,
		providerID:    p.ProviderID,
		serviceID:     p.Service.ID(),
		customer:      p.Customer,
		start:         p.Start.UTC(),
		duration:      p.Service.Duration(),
		depositCents:  p.Service.Deposit().Cents(),
		snapshot:      policy.Capture(p.Service.Policy()),
		status:        StatusPending,
		depositStatus: DepositPending,
		disputeStatus: DisputeNone,
		createdAt:     now,
		updatedAt:     now,
	}
	b.requestPayment(PaymentCapture, b.depositCents, now)
	return b, nil
}

// Confirm records a successful deposit capture.
func (b *Booking) Confirm(paymentRef string, now time.Time) error {
	if b.status != StatusPending {
		return ErrInvalidTransition
	}
	b.status = StatusConfirmed
	b.depositStatus = DepositPaid
	b.paymentRef = paymentRef
	b.confirmedAt = &now
	b.touch(now)
	b.notify(EventConfirmed, actor.RoleCustomer, now)
	return nil
}

// Cancel releases the slot. An unpaid deposit is voided in full; a paid one
// is split by the booking's own policy snapshot.
func (b *Booking) Cancel(by actor.Actor, reason string, now time.Time) error {
	if err := b.authorize(by, actor.RoleCustomer, actor.RoleProvider, actor.RoleAdmin); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return ErrReasonTooLong
	}

	switch b.status {
	case StatusPending:
		b.refundCents, b.feeCents = b.depositCents, 0
		b.depositStatus = DepositVoided
		b.requestPayment(PaymentVoid, b.depositCents, now)
	case StatusConfirmed:
		charge := b.snapshot.CancellationCharge(b.depositCents, b.start.Sub(now))
		b.applyCharge(charge, now)
	default:
		return ErrInvalidTransition
	}

	b.status = StatusCancelled
	b.cancelledAt = &now
	b.cancellationReason = reason
	b.cancelledBy = by.Role
	b.touch(now)
	b.notify(EventCancelled, counterparty(by.Role), now)
	return nil
}

func (b *Booking) MarkNoShow(by actor.Actor, now time.Time) error {
	if err := b.authorize(by, actor.RoleProvider); err != nil {
		return err
	}
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	if !timerange.IsPast(b.start, now) {
		return ErrNotStarted
	}
	b.applyCharge(b.snapshot.NoShowCharge(b.depositCents), now)
	b.status = StatusNoShow
	b.noShowAt = &now
	b.touch(now)
	b.notify(EventNoShow, actor.RoleCustomer, now)
	return nil
}

func (b *Booking) Complete(by actor.Actor, now time.Time) error {
	if err := b.authorize(by, actor.RoleProvider); err != nil {
		return err
	}
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	if !b.Window().HasElapsed(now) {
		return ErrNotFinished
	}
	b.status = StatusCompleted
	b.depositStatus = DepositEarned
	b.completedAt = &now
	b.touch(now)
	b.notify(EventCompleted, actor.RoleCustomer, now)
	return nil
}

func (b *Booking) OpenDispute(by actor.Actor, reason string, now time.Time) error {
	if err := b.authorize(by, actor.RoleCustomer); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	if !b.status.Disputable() {
		return ErrInvalidTransition
	}
	if b.disputeStatus != DisputeNone {
		return ErrDisputeExists
	}
	b.disputeStatus = DisputePending
	b.disputeReason = reason
	b.disputeOpenedAt = &now
	b.touch(now)
	b.notify(EventDisputeOpened, actor.RoleProvider, now)
	return nil
}

// ResolveDispute closes an open dispute. Ruling for the customer refunds
// whatever part of a captured deposit was not refunded yet.
func (b *Booking) ResolveDispute(by actor.Actor, outcome DisputeStatus, notes string, now time.Time) error {
	if err := b.authorize(by, actor.RoleProvider, actor.RoleAdmin); err != nil {
		return err
	}
	if outcome != DisputeResolvedCustomer && outcome != DisputeResolvedProvider {
		return ErrInvalidResolution
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	if b.disputeStatus != DisputePending {
		return ErrDisputeNotOpen
	}

	if outcome == DisputeResolvedCustomer && b.depositStatus.Captured() {
		if owed := b.depositCents - b.refundCents; owed > 0 {
			b.refundCents = b.depositCents
			b.feeCents = 0
			b.depositStatus = DepositRefundPending
			b.requestPayment(PaymentRefund, owed, now)
		}
	}

	b.disputeStatus = outcome
	b.resolutionNotes = notes
	b.disputeResolvedAt = &now
	b.touch(now)
	b.notify(EventDisputeResolved, actor.RoleCustomer, now)
	return nil
}

// ConfirmRefund records refundedTotal, the cumulative amount the payment
// boundary reports as returned to the customer. The deposit stays
// refund_pending until that total covers every refund raised so far.
func (b *Booking) ConfirmRefund(refundedTotal int64, now time.Time) error {
	if b.depositStatus != DepositRefundPending {
		return ErrNoRefundPending
	}
	if refundedTotal > b.refundedCents {
		b.refundedCents = min(refundedTotal, b.depositCents)
		b.touch(now)
	}
	if b.refundedCents < b.refundCents {
		return nil
	}
	if b.refundedCents >= b.depositCents {
		b.depositStatus = DepositRefunded
	} else {
		b.depositStatus = DepositPartiallyRefunded
	}
	b.touch(now)
	return nil
}

// RecordLatePayment handles a capture that arrives after the unpaid booking
// was already cancelled: the money goes straight back.
func (b *Booking) RecordLatePayment(paymentRef string, now time.Time) error {
	if b.status != StatusCancelled || b.depositStatus != DepositVoided {
		return ErrInvalidTransition
	}
	b.paymentRef = paymentRef
	b.refundCents, b.feeCents = b.depositCents, 0
	b.depositStatus = DepositRefundPending
	b.requestPayment(PaymentRefund, b.depositCents, now)
	b.touch(now)
	return nil
}

// OccupiesSlot reports whether the booking blocks its window for others.
func (b *Booking) OccupiesSlot(pendingOccupies bool) bool {
	return StatusOccupies(b.status, pendingOccupies)
}

func StatusOccupies(s Status, pendingOccupies bool) bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusNoShow:
		return true
	case StatusPending:
		return pendingOccupies
	default:
		return false
	}
}

func (b *Booking) Window() timerange.Range {
	return timerange.FromDuration(b.start, b.duration)
}

// PullNotifications returns and clears the notifications produced so far.
func (b *Booking) PullNotifications() []Notification {
	out := b.notifications
	b.notifications = nil
	return out
}

func (b *Booking) PullPaymentRequests() []PaymentRequest {
	out := b.payments
	b.payments = nil
	return out
}

func (b *Booking) applyCharge(c policy.Charge, now time.Time) {
	b.refundCents, b.feeCents = c.RefundCents, c.FeeCents
	if c.RefundCents > 0 {
		b.depositStatus = DepositRefundPending
		b.requestPayment(PaymentRefund, c.RefundCents, now)
		return
	}
	b.depositStatus = DepositForfeited
}

// authorize masks bookings of other providers as not found.
func (b *Booking) authorize(by actor.Actor, allowed ...actor.Role) error {
	if !by.Is(allowed...) {
		return ErrActionNotPermitted
	}
	switch by.Role {
	case actor.RoleProvider:
		if by.ID != b.providerID.String() {
			return ErrBookingNotFound
		}
	case actor.RoleCustomer:
		if by.ID != b.id.String() {
			return ErrBookingNotFound
		}
	}
	return nil
}

func (b *Booking) notify(t EventType, recipient actor.Role, now time.Time) {
	b.notifications = append(b.notifications, Notification{
		Type:         t,
		BookingID:    b.id,
		ProviderID:   b.providerID,
		Recipient:    recipient,
		DepositCents: b.depositCents,
		RefundCents:  b.refundCents,
		FeeCents:     b.feeCents,
		OccurredAt:   now,
	})
}

func (b *Booking) requestPayment(kind PaymentKind, amount int64, now time.Time) {
	if amount <= 0 {
		return
	}
	b.payments = append(b.payments, PaymentRequest{
		Kind:        kind,
		BookingID:   b.id,
		AmountCents: amount,
		PaymentRef:  b.paymentRef,
		Email:       b.customer.email,
		RequestedAt: now,
	})
}

func (b *Booking) touch(now time.Time) { b.updatedAt = now }

func counterparty(r actor.Role) actor.Role {
	if r == actor.RoleCustomer {
		return actor.RoleProvider
	}
	return actor.RoleCustomer
}
