// Package outbox delivers messages written by booking transitions to the
// notification and payment boundaries, retrying with backoff.
package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"
)

const maxBackoff = 5 * time.Minute

var ErrUnknownKind = errs.New("unknown outbox message kind")

type Relay struct {
	store     shared.OutboxStore
	publisher shared.Publisher
	payments  shared.PaymentGateway
	clock     clock.Clock
	logger    *slog.Logger

	pollEvery   time.Duration
	batchSize   int
	maxAttempts int
}

func NewRelay(store shared.OutboxStore, publisher shared.Publisher, payments shared.PaymentGateway, clk clock.Clock, logger *slog.Logger, cfg config.OutboxConfig) *Relay {
	return &Relay{
		store:       store,
		publisher:   publisher,
		payments:    payments,
		clock:       clk,
		logger:      logger.With("component", "outbox_relay"),
		pollEvery:   cfg.PollEvery,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollEvery)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", "poll_every", r.pollEvery.String())
	for {
		if _, err := r.Tick(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("outbox tick failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick delivers one batch of due messages and returns how many were delivered.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	msgs, err := r.store.ClaimDue(ctx, r.clock.Now(), r.batchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, m := range msgs {
		if derr := r.dispatch(ctx, m); derr != nil {
			r.fail(ctx, m, derr)
			continue
		}
		if merr := r.store.MarkPublished(ctx, m.ID, r.clock.Now()); merr != nil {
			r.logger.Error("failed to mark outbox message published",
				"message_id", m.ID.String(),
				"error", merr.Error())
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (r *Relay) dispatch(ctx context.Context, m shared.OutboxMessage) error {
	switch m.Kind {
	case shared.OutboxNotification:
		return r.publisher.Publish(ctx, m.Topic, []byte(m.AggregateID.String()), m.Payload)
	case shared.OutboxPayment:
		var req booking.PaymentRequest
		if err := json.Unmarshal(m.Payload, &req); err != nil {
			return errs.Wrap(err, "failed to decode payment request")
		}
		switch req.Kind {
		case booking.PaymentCapture:
			ref, err := r.payments.RequestDepositCapture(ctx, req)
			if err == nil {
				r.logger.Info("deposit capture requested",
					"booking_id", req.BookingID.String(),
					"payment_ref", ref)
			}
			return err
		case booking.PaymentRefund:
			return r.payments.RequestRefund(ctx, req)
		case booking.PaymentVoid:
			return r.payments.VoidDeposit(ctx, req)
		}
	}
	return errs.Wrap(ErrUnknownKind, string(m.Kind)+"/"+m.Topic)
}

func (r *Relay) fail(ctx context.Context, m shared.OutboxMessage, cause error) {
	attempts := m.Attempts + 1
	if attempts >= r.maxAttempts || errs.Is(cause, ErrUnknownKind) {
		r.logger.Error("outbox message dead-lettered",
			"message_id", m.ID.String(),
			"topic", m.Topic,
			"attempts", attempts,
			"error", cause.Error())
		if err := r.store.MarkDead(ctx, m.ID, cause.Error()); err != nil {
			r.logger.Error("failed to park outbox message", "message_id", m.ID.String(), "error", err.Error())
		}
		return
	}

	retryAt := r.clock.Now().Add(Backoff(attempts, r.pollEvery))
	r.logger.Warn("outbox delivery failed, will retry",
		"message_id", m.ID.String(),
		"topic", m.Topic,
		"attempt", attempts,
		"retry_at", retryAt,
		"error", cause.Error())
	if err := r.store.MarkFailed(ctx, m.ID, cause.Error(), retryAt); err != nil {
		r.logger.Error("failed to record outbox failure", "message_id", m.ID.String(), "error", err.Error())
	}
}

// Backoff doubles base per attempt, capped at five minutes.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
