package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timerange"
	"booking-engine/internal/usecase/admission"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	idempotencyTTL          = 24 * time.Hour
	maxIdempotencyKeyLength = 255
)

// systemActor performs transitions the payment boundary forces on a booking.
var systemActor = actor.Actor{ID: "system", Role: actor.RoleAdmin}

type BookingCommands interface {
	Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error)
	Confirm(ctx context.Context, bookingID uuid.UUID, paymentRef string) (*booking.Booking, error)
	ConfirmRefund(ctx context.Context, paymentRef string, refundedCents int64) (*booking.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, by actor.Actor, reason string) (*booking.Booking, error)
	MarkNoShow(ctx context.Context, bookingID uuid.UUID, by actor.Actor) (*booking.Booking, error)
	Complete(ctx context.Context, bookingID uuid.UUID, by actor.Actor) (*booking.Booking, error)
	OpenDispute(ctx context.Context, bookingID uuid.UUID, by actor.Actor, reason string) (*booking.Booking, error)
	ResolveDispute(ctx context.Context, bookingID uuid.UUID, by actor.Actor, outcome, notes string) (*booking.Booking, error)
}

type CreateBookingRequest struct {
	ProviderSlug  string
	ServiceID     uuid.UUID
	Start         time.Time
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	// IdempotencyKey is optional; a repeated key replays the first result.
	IdempotencyKey string
}

type CreateBookingResult struct {
	Booking     *booking.Booking
	ManageToken string
	Replayed    bool
}

type bookingUseCaseImpl struct {
	uow             shared.UnitOfWork
	checker         *admission.Checker
	tokens          shared.ManageTokenIssuer
	clock           clock.Clock
	invalidator     scheduleInvalidator
	pendingOccupies bool
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	checker *admission.Checker,
	cache shared.SlotCache,
	tokens shared.ManageTokenIssuer,
	clk clock.Clock,
	cfg config.CacheConfig,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:             uow,
		checker:         checker,
		tokens:          tokens,
		clock:           clk,
		invalidator:     newScheduleInvalidator(cache, cfg),
		pendingOccupies: checker.PendingOccupies(),
	}
}

// Create admits the booking against live storage and inserts it. Once
// admission starts the caller's cancellation no longer applies: the booking
// is either committed or rejected as a whole.
func (uc *bookingUseCaseImpl) Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	customer, err := booking.NewCustomer(req.CustomerName, req.CustomerEmail, req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		return nil, ErrInvalidIdempotencyKey
	}
	start := req.Start.UTC()
	if timerange.IsPast(start, uc.clock.Now()) {
		return nil, booking.ErrStartInPast
	}

	p, err := uc.uow.CommandReads().ProviderBySlug(ctx, req.ProviderSlug)
	if err != nil {
		return nil, notFoundAs(err, ErrProviderNotFound)
	}

	ctx = context.WithoutCancel(ctx)

	var (
		created  *booking.Booking
		replayed bool
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		bookingID := uuid.New()
		if req.IdempotencyKey != "" {
			prior, derr := uc.claimIdempotencyKey(ctx, tx, p.ID, bookingID, req)
			if derr != nil {
				return derr
			}
			if prior != nil {
				created, replayed = prior, true
				return nil
			}
		}

		svc, derr := tx.Reads().ServiceByID(ctx, p.ID, req.ServiceID)
		if derr != nil {
			return notFoundAs(derr, ErrServiceNotFound)
		}
		if derr = svc.Bookable(); derr != nil {
			return derr
		}

		now := uc.clock.Now()
		if derr = uc.checker.Admit(ctx, tx.Reads(), p, start, svc.Duration(), now); derr != nil {
			return derr
		}

		b, derr := booking.New(booking.NewParams{
			ID:         bookingID,
			ProviderID: p.ID,
			Service:    svc,
			Customer:   customer,
			Start:      start,
		}, now)
		if derr != nil {
			return derr
		}
		if derr = tx.Bookings().Create(ctx, tx.DB(), b, b.OccupiesSlot(uc.pendingOccupies)); derr != nil {
			return exclusionAsConflict(derr)
		}
		if derr = uc.enqueue(ctx, tx, b, now); derr != nil {
			return derr
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replayed && created.OccupiesSlot(uc.pendingOccupies) {
		uc.invalidator.invalidate(ctx, p.Slug)
	}

	token, err := uc.tokens.GenerateManageToken(created.ID())
	if err != nil {
		return nil, errs.Wrap(err, "failed to issue manage token")
	}
	return &CreateBookingResult{Booking: created, ManageToken: token, Replayed: replayed}, nil
}

// claimIdempotencyKey records key for bookingID, or returns the booking an
// earlier request with the same key created. A concurrent holder of the key
// blocks the insert until it commits; the second lookup then sees its row.
func (uc *bookingUseCaseImpl) claimIdempotencyKey(ctx context.Context, tx shared.Tx, providerID, bookingID uuid.UUID, req CreateBookingRequest) (*booking.Booking, error) {
	hash, err := requestHash(req)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()

	for range 2 {
		rec, err := tx.Idempotency().Find(ctx, tx.DB(), providerID, req.IdempotencyKey, now)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			if rec.RequestHash != hash {
				return nil, ErrIdempotencyKeyReused
			}
			b, err := tx.Reads().BookingForUpdate(ctx, rec.BookingID)
			if err != nil {
				return nil, notFoundAs(err, booking.ErrBookingNotFound)
			}
			return b, nil
		}

		err = tx.Idempotency().Save(ctx, tx.DB(), shared.IdempotencyRecord{
			ProviderID:  providerID,
			Key:         req.IdempotencyKey,
			RequestHash: hash,
			BookingID:   bookingID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(idempotencyTTL),
		})
		if err == nil {
			return nil, nil
		}
		if !infra.IsKind(err, infra.KindConflict) {
			return nil, err
		}
	}
	return nil, ErrIdempotencyInProgress
}

func requestHash(req CreateBookingRequest) (string, error) {
	data, err := json.Marshal(struct {
		ServiceID uuid.UUID `json:"service_id"`
		Start     time.Time `json:"start"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
	}{req.ServiceID, req.Start.UTC(), req.CustomerName, req.CustomerEmail, req.CustomerPhone})
	if err != nil {
		return "", errs.Wrap(err, "failed to hash booking request")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Confirm records the deposit capture. A capture that lands on a booking
// already cancelled while unpaid is refunded instead. When pending bookings
// do not hold their slot, confirmation can lose the slot to a booking that
// was confirmed first; the capture is then refunded the same way.
func (uc *bookingUseCaseImpl) Confirm(ctx context.Context, bookingID uuid.UUID, paymentRef string) (*booking.Booking, error) {
	b, err := uc.transition(ctx, bookingID, func(b *booking.Booking, now time.Time) error {
		if b.Status() == booking.StatusCancelled && b.DepositStatus() == booking.DepositVoided {
			return b.RecordLatePayment(paymentRef, now)
		}
		return b.Confirm(paymentRef, now)
	})
	if err == nil || !errs.Is(err, admission.ErrSlotUnavailable) || uc.pendingOccupies {
		return b, err
	}

	slog.Warn("confirmed booking lost its slot, refunding deposit",
		"booking_id", bookingID.String(),
		"payment_ref", paymentRef)
	return uc.transition(ctx, bookingID, func(b *booking.Booking, now time.Time) error {
		if cerr := b.Cancel(systemActor, "slot taken before payment completed", now); cerr != nil {
			return cerr
		}
		return b.RecordLatePayment(paymentRef, now)
	})
}

func (uc *bookingUseCaseImpl) ConfirmRefund(ctx context.Context, paymentRef string, refundedCents int64) (*booking.Booking, error) {
	b, err := uc.uow.CommandReads().BookingByPaymentRef(ctx, paymentRef)
	if err != nil {
		return nil, notFoundAs(err, booking.ErrBookingNotFound)
	}
	return uc.transition(ctx, b.ID(), func(b *booking.Booking, now time.Time) error {
		return b.ConfirmRefund(refundedCents, now)
	})
}

func (uc *bookingUseCaseImpl) Cancel(ctx context.Context, bookingID uuid.UUID, by actor.Actor, reason string) (*booking.Booking, error) {
	return uc.transition(ctx, bookingID, func(b *booking.Booking, now time.Time) error {
		return b.Cancel(by, reason, now)
	})
}

func (uc *bookingUseCaseImpl) MarkNoShow(ctx context.Context, bookingID uuid.UUID, by actor.Actor) (*booking.Booking, error) {
	return uc.transition(ctx, bookingID, func(b *booking.Booking, now time.Time) error {
		return b.MarkNoShow(by, now)
	})
}

func (uc *bookingUseCaseImpl) Complete(ctx context.Context, bookingID uuid.UUID, by actor.Actor) (*booking.Booking, error) {
	return uc.transition(ctx, bookingID, func(b *booking.Booking, now time.Time) error {
		return b.Complete(by, now)
	})
}

func (uc *bookingUseCaseImpl) OpenDispute(ctx context.Context, bookingID uuid.UUID, by actor.Actor, reason string) (*booking.Booking, error) {
	return uc.transition(ctx, bookingID, func(b *booking.Booking, now time.Time) error {
		return b.OpenDispute(by, reason, now)
	})
}

func (uc *bookingUseCaseImpl) ResolveDispute(ctx context.Context, bookingID uuid.UUID, by actor.Actor, outcome, notes string) (*booking.Booking, error) {
	resolution, err := booking.NewResolution(outcome)
	if err != nil {
		return nil, err
	}
	return uc.transition(ctx, bookingID, func(b *booking.Booking, now time.Time) error {
		return b.ResolveDispute(by, resolution, notes, now)
	})
}

// transition loads the booking under a row lock, applies fn and persists the
// result together with its outbox messages. A change in slot occupancy drops
// the provider's cached slots.
func (uc *bookingUseCaseImpl) transition(ctx context.Context, bookingID uuid.UUID, fn func(b *booking.Booking, now time.Time) error) (*booking.Booking, error) {
	var (
		updated       *booking.Booking
		occupancyDiff bool
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, derr := tx.Reads().BookingForUpdate(ctx, bookingID)
		if derr != nil {
			return notFoundAs(derr, booking.ErrBookingNotFound)
		}

		before := b.OccupiesSlot(uc.pendingOccupies)
		now := uc.clock.Now()
		if derr = fn(b, now); derr != nil {
			return derr
		}
		after := b.OccupiesSlot(uc.pendingOccupies)

		if derr = tx.Bookings().Update(ctx, tx.DB(), b, after); derr != nil {
			return exclusionAsConflict(derr)
		}
		if derr = uc.enqueue(ctx, tx, b, now); derr != nil {
			return derr
		}
		updated = b
		occupancyDiff = before != after
		return nil
	})
	if err != nil {
		return nil, err
	}

	if occupancyDiff {
		uc.invalidateProvider(ctx, updated.ProviderID())
	}
	return updated, nil
}

func (uc *bookingUseCaseImpl) enqueue(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
	msgs, err := shared.OutboxFrom(b, now)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	return tx.Outbox().Enqueue(ctx, tx.DB(), msgs...)
}

func (uc *bookingUseCaseImpl) invalidateProvider(ctx context.Context, providerID uuid.UUID) {
	p, err := uc.uow.CommandReads().ProviderByID(ctx, providerID)
	if err != nil {
		slog.Error("failed to resolve provider for cache invalidation",
			"provider_id", providerID.String(),
			"error", err.Error())
		return
	}
	uc.invalidator.invalidate(ctx, p.Slug)
}

// exclusionAsConflict maps the storage exclusion constraint onto the same
// conflict the admission pre-check reports.
func exclusionAsConflict(err error) error {
	if infra.IsKind(err, infra.KindConflict) {
		slog.Info("booking lost the slot to a concurrent writer", "error", err.Error())
		return admission.ErrSlotUnavailable
	}
	return err
}
