//go:build unit

package booking_test

import (
	"testing"
	"time"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/service"
	"booking-engine/internal/pkg/errs"
	"booking-engine/tests/common/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerOf(b *booking.Booking) actor.Actor {
	return actor.Actor{ID: b.ProviderID().String(), Role: actor.RoleProvider}
}

func customerOf(b *booking.Booking) actor.Actor {
	return actor.Actor{ID: b.ID().String(), Role: actor.RoleCustomer}
}

var admin = actor.Actor{ID: "ops", Role: actor.RoleAdmin}

func TestNew(t *testing.T) {
	t.Run("pending with copied service terms", func(t *testing.T) {
		bb := builder.NewBookingBuilder()
		b, err := bb.BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, booking.DepositPending, b.DepositStatus())
		assert.Equal(t, booking.DisputeNone, b.DisputeStatus())
		assert.Equal(t, 60, b.Duration())
		assert.Equal(t, int64(5000), b.DepositCents())
		assert.Equal(t, 120, b.Snapshot().FreeCancellationMinutes)
		assert.Equal(t, 1, b.Snapshot().Version)

		payments := b.PullPaymentRequests()
		require.Len(t, payments, 1)
		assert.Equal(t, booking.PaymentCapture, payments[0].Kind)
		assert.Equal(t, int64(5000), payments[0].AmountCents)
		assert.Empty(t, b.PullNotifications())
	})

	t.Run("start in the past", func(t *testing.T) {
		_, err := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.Start = b.Now }).BuildDomain()
		assert.ErrorIs(t, err, booking.ErrStartInPast)
	})

	t.Run("inactive service", func(t *testing.T) {
		_, err := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.Service.IsActive = false }).BuildDomain()
		assert.ErrorIs(t, err, service.ErrServiceInactive)
	})

	t.Run("customer validation", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*builder.BookingBuilder)
			errIs  error
		}{
			{"blank name", func(b *builder.BookingBuilder) { b.Name = "  " }, booking.ErrInvalidCustomerName},
			{"bad email", func(b *builder.BookingBuilder) { b.Email = "ada@" }, booking.ErrInvalidEmail},
			{"letters in phone", func(b *builder.BookingBuilder) { b.Phone = "call me" }, booking.ErrInvalidPhone},
			{"phone optional", func(b *builder.BookingBuilder) { b.Phone = "" }, nil},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := builder.NewBookingBuilder().With(tc.mutate).BuildDomain()
				if tc.errIs == nil {
					assert.NoError(t, err)
					return
				}
				assert.ErrorIs(t, err, tc.errIs)
				assert.True(t, errs.Is(err, errs.ErrValidation))
			})
		}
	})
}

func TestConfirm(t *testing.T) {
	bb := builder.NewBookingBuilder()
	b := bb.MustPending()

	require.NoError(t, b.Confirm("pi_123", bb.Now))
	assert.Equal(t, booking.StatusConfirmed, b.Status())
	assert.Equal(t, booking.DepositPaid, b.DepositStatus())
	assert.Equal(t, "pi_123", b.PaymentRef())

	events := b.PullNotifications()
	require.Len(t, events, 1)
	assert.Equal(t, booking.EventConfirmed, events[0].Type)
	assert.Equal(t, actor.RoleCustomer, events[0].Recipient)

	assert.ErrorIs(t, b.Confirm("pi_123", bb.Now), booking.ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	t.Run("free window refunds the full deposit", func(t *testing.T) {
		bb := builder.NewBookingBuilder()
		b := bb.MustConfirmed()

		// created at T, starts at T+200, cancelled at T+10
		require.NoError(t, b.Cancel(customerOf(b), "plans changed", bb.Now.Add(10*time.Minute)))

		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.Equal(t, int64(5000), b.RefundCents())
		assert.Zero(t, b.FeeCents())
		assert.Equal(t, booking.DepositRefundPending, b.DepositStatus())
		assert.Equal(t, "plans changed", b.CancellationReason())
		assert.Equal(t, actor.RoleCustomer, b.CancelledBy())
		require.NotNil(t, b.CancelledAt())

		payments := b.PullPaymentRequests()
		require.Len(t, payments, 1)
		assert.Equal(t, booking.PaymentRefund, payments[0].Kind)
		assert.Equal(t, int64(5000), payments[0].AmountCents)
		assert.Equal(t, "pi_test", payments[0].PaymentRef)

		events := b.PullNotifications()
		require.Len(t, events, 1)
		assert.Equal(t, booking.EventCancelled, events[0].Type)
		assert.Equal(t, actor.RoleProvider, events[0].Recipient)
		assert.Equal(t, int64(5000), events[0].RefundCents)
	})

	t.Run("late tier uses the snapshot not the live service", func(t *testing.T) {
		bb := builder.NewBookingBuilder()
		b := bb.MustConfirmed()
		bb.Service.Policy.FreeCancellationMinutes = 0
		bb.Service.Policy.LateFeeTiers = nil

		require.NoError(t, b.Cancel(providerOf(b), "", b.Start().Add(-60*time.Minute)))
		assert.Equal(t, int64(2500), b.RefundCents())
		assert.Equal(t, int64(2500), b.FeeCents())
		assert.Equal(t, actor.RoleCustomer, b.PullNotifications()[0].Recipient)
	})

	t.Run("free window boundary is compared to the second", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()

		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-(120*time.Minute+30*time.Second))))
		assert.Equal(t, int64(5000), b.RefundCents())
		assert.Zero(t, b.FeeCents())
	})

	t.Run("last minute cancellation forfeits the deposit", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()

		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-5*time.Minute)))
		assert.Zero(t, b.RefundCents())
		assert.Equal(t, int64(5000), b.FeeCents())
		assert.Equal(t, booking.DepositForfeited, b.DepositStatus())
		assert.Empty(t, b.PullPaymentRequests())
	})

	t.Run("unpaid booking voids the deposit", func(t *testing.T) {
		bb := builder.NewBookingBuilder()
		b := bb.MustPending()

		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-5*time.Minute)))
		assert.Equal(t, booking.DepositVoided, b.DepositStatus())
		assert.Equal(t, int64(5000), b.RefundCents())
		assert.Zero(t, b.FeeCents())

		payments := b.PullPaymentRequests()
		require.Len(t, payments, 1)
		assert.Equal(t, booking.PaymentVoid, payments[0].Kind)
	})

	t.Run("rejected from terminal states", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-time.Hour)))

		err := b.Cancel(customerOf(b), "", b.Start().Add(-time.Hour))
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.True(t, errs.Is(err, errs.ErrConflict))
	})

	t.Run("other provider sees not found", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		other := actor.Actor{ID: "someone-else", Role: actor.RoleProvider}
		assert.ErrorIs(t, b.Cancel(other, "", b.Start()), booking.ErrBookingNotFound)
	})

	t.Run("manage token of another booking sees not found", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		other := actor.Actor{ID: "another-booking", Role: actor.RoleCustomer}
		assert.ErrorIs(t, b.Cancel(other, "", b.Start()), booking.ErrBookingNotFound)
	})
}

func TestMarkNoShow(t *testing.T) {
	t.Run("after start by provider", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()

		require.NoError(t, b.MarkNoShow(providerOf(b), b.Start().Add(15*time.Minute)))
		assert.Equal(t, booking.StatusNoShow, b.Status())
		assert.Equal(t, int64(5000), b.FeeCents())
		assert.Equal(t, booking.DepositForfeited, b.DepositStatus())
		assert.Equal(t, booking.EventNoShow, b.PullNotifications()[0].Type)
	})

	t.Run("partial fee refunds the remainder", func(t *testing.T) {
		bb := builder.NewBookingBuilder()
		bb.Service.Policy.NoShowFeePercent = decimal.NewFromInt(40)
		b := bb.MustConfirmed()

		require.NoError(t, b.MarkNoShow(providerOf(b), b.Start()))
		assert.Equal(t, int64(2000), b.FeeCents())
		assert.Equal(t, int64(3000), b.RefundCents())
		assert.Equal(t, booking.DepositRefundPending, b.DepositStatus())
	})

	t.Run("before start", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		err := b.MarkNoShow(providerOf(b), b.Start().Add(-time.Minute))
		assert.ErrorIs(t, err, booking.ErrNotStarted)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("customer may not", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		err := b.MarkNoShow(customerOf(b), b.Start().Add(time.Hour))
		assert.ErrorIs(t, err, booking.ErrActionNotPermitted)
		assert.True(t, errs.Is(err, errs.ErrForbidden))
	})

	t.Run("pending booking", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustPending()
		assert.ErrorIs(t, b.MarkNoShow(providerOf(b), b.Start().Add(time.Hour)), booking.ErrInvalidTransition)
	})
}

func TestComplete(t *testing.T) {
	b := builder.NewBookingBuilder().MustConfirmed()

	assert.ErrorIs(t, b.Complete(providerOf(b), b.Start().Add(59*time.Minute)), booking.ErrNotFinished)

	require.NoError(t, b.Complete(providerOf(b), b.Start().Add(60*time.Minute)))
	assert.Equal(t, booking.StatusCompleted, b.Status())
	assert.Equal(t, booking.DepositEarned, b.DepositStatus())

	assert.ErrorIs(t, b.Complete(providerOf(b), b.Start().Add(2*time.Hour)), booking.ErrInvalidTransition)
}

func TestDispute(t *testing.T) {
	t.Run("customer wins after forfeiting", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.MarkNoShow(providerOf(b), b.Start().Add(10*time.Minute)))
		b.PullNotifications()

		require.NoError(t, b.OpenDispute(customerOf(b), "I was there", b.Start().Add(time.Hour)))
		assert.Equal(t, booking.DisputePending, b.DisputeStatus())
		opened := b.PullNotifications()
		require.Len(t, opened, 1)
		assert.Equal(t, booking.EventDisputeOpened, opened[0].Type)
		assert.Equal(t, actor.RoleProvider, opened[0].Recipient)

		require.NoError(t, b.ResolveDispute(admin, booking.DisputeResolvedCustomer, "camera footage", b.Start().Add(2*time.Hour)))
		assert.Equal(t, booking.DisputeResolvedCustomer, b.DisputeStatus())
		assert.Equal(t, int64(5000), b.RefundCents())
		assert.Zero(t, b.FeeCents())
		assert.Equal(t, booking.DepositRefundPending, b.DepositStatus())
		require.NotNil(t, b.DisputeResolvedAt())

		payments := b.PullPaymentRequests()
		require.Len(t, payments, 1)
		assert.Equal(t, booking.PaymentRefund, payments[0].Kind)
		assert.Equal(t, int64(5000), payments[0].AmountCents)
	})

	t.Run("provider wins keeps the fee", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.MarkNoShow(providerOf(b), b.Start()))
		require.NoError(t, b.OpenDispute(customerOf(b), "unfair", b.Start()))
		b.PullPaymentRequests()

		require.NoError(t, b.ResolveDispute(providerOf(b), booking.DisputeResolvedProvider, "", b.Start()))
		assert.Equal(t, int64(5000), b.FeeCents())
		assert.Equal(t, booking.DepositForfeited, b.DepositStatus())
		assert.Empty(t, b.PullPaymentRequests())
	})

	t.Run("cannot reopen", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.Complete(providerOf(b), b.Start().Add(2*time.Hour)))
		require.NoError(t, b.OpenDispute(customerOf(b), "rude", b.Start().Add(3*time.Hour)))
		require.NoError(t, b.ResolveDispute(admin, booking.DisputeResolvedProvider, "", b.Start().Add(4*time.Hour)))

		err := b.OpenDispute(customerOf(b), "again", b.Start().Add(5*time.Hour))
		assert.ErrorIs(t, err, booking.ErrDisputeExists)
	})

	t.Run("rejections", func(t *testing.T) {
		confirmed := builder.NewBookingBuilder().MustConfirmed()
		now := confirmed.Start().Add(time.Hour)

		assert.ErrorIs(t, confirmed.OpenDispute(customerOf(confirmed), "  ", now), booking.ErrReasonRequired)
		assert.ErrorIs(t, confirmed.OpenDispute(customerOf(confirmed), "too early", now), booking.ErrInvalidTransition)
		assert.ErrorIs(t, confirmed.OpenDispute(providerOf(confirmed), "x", now), booking.ErrActionNotPermitted)
		assert.ErrorIs(t, confirmed.ResolveDispute(admin, booking.DisputeResolvedCustomer, "", now), booking.ErrDisputeNotOpen)
		assert.ErrorIs(t, confirmed.ResolveDispute(admin, booking.DisputeStatus("maybe"), "", now), booking.ErrInvalidResolution)
		assert.ErrorIs(t, confirmed.ResolveDispute(customerOf(confirmed), booking.DisputeResolvedCustomer, "", now), booking.ErrActionNotPermitted)
	})
}

func TestConfirmRefund(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-3*time.Hour)))
		require.NoError(t, b.ConfirmRefund(5000, b.Start()))
		assert.Equal(t, booking.DepositRefunded, b.DepositStatus())
		assert.Equal(t, int64(5000), b.RefundedCents())
		assert.ErrorIs(t, b.ConfirmRefund(5000, b.Start()), booking.ErrNoRefundPending)
	})

	t.Run("partial", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-time.Hour)))
		require.NoError(t, b.ConfirmRefund(2500, b.Start()))
		assert.Equal(t, booking.DepositPartiallyRefunded, b.DepositStatus())
	})

	t.Run("short confirmation keeps the refund pending", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-3*time.Hour)))

		require.NoError(t, b.ConfirmRefund(1000, b.Start()))
		assert.Equal(t, booking.DepositRefundPending, b.DepositStatus())
		assert.Equal(t, int64(1000), b.RefundedCents())

		// redelivered event with a stale total
		require.NoError(t, b.ConfirmRefund(800, b.Start()))
		assert.Equal(t, int64(1000), b.RefundedCents())
		assert.Equal(t, booking.DepositRefundPending, b.DepositStatus())
	})

	t.Run("overlapping refunds settle only when both are confirmed", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-60*time.Minute)))
		require.Equal(t, int64(2500), b.RefundCents())
		require.Equal(t, booking.DepositRefundPending, b.DepositStatus())

		require.NoError(t, b.OpenDispute(customerOf(b), "the fee is unfair", b.Start().Add(-50*time.Minute)))
		require.NoError(t, b.ResolveDispute(admin, booking.DisputeResolvedCustomer, "", b.Start().Add(-40*time.Minute)))
		refunds := b.PullPaymentRequests()
		require.Len(t, refunds, 2)
		assert.Equal(t, int64(2500), refunds[0].AmountCents)
		assert.Equal(t, int64(2500), refunds[1].AmountCents)

		require.NoError(t, b.ConfirmRefund(2500, b.Start()))
		assert.Equal(t, booking.DepositRefundPending, b.DepositStatus())

		require.NoError(t, b.ConfirmRefund(5000, b.Start()))
		assert.Equal(t, booking.DepositRefunded, b.DepositStatus())
		assert.Equal(t, int64(5000), b.RefundedCents())
	})

	t.Run("nothing pending", func(t *testing.T) {
		b := builder.NewBookingBuilder().MustConfirmed()
		assert.ErrorIs(t, b.ConfirmRefund(5000, b.Start()), booking.ErrNoRefundPending)
	})
}

func TestRecordLatePayment(t *testing.T) {
	b := builder.NewBookingBuilder().MustPending()
	require.NoError(t, b.Cancel(customerOf(b), "", b.Start().Add(-time.Hour)))
	b.PullPaymentRequests()

	require.NoError(t, b.RecordLatePayment("pi_late", b.Start()))
	assert.Equal(t, booking.DepositRefundPending, b.DepositStatus())
	assert.Equal(t, "pi_late", b.PaymentRef())

	payments := b.PullPaymentRequests()
	require.Len(t, payments, 1)
	assert.Equal(t, booking.PaymentRefund, payments[0].Kind)
	assert.Equal(t, "pi_late", payments[0].PaymentRef)

	confirmed := builder.NewBookingBuilder().MustConfirmed()
	assert.ErrorIs(t, confirmed.RecordLatePayment("pi_x", confirmed.Start()), booking.ErrInvalidTransition)
}

func TestStatusOccupies(t *testing.T) {
	cases := []struct {
		status          booking.Status
		pendingOccupies bool
		want            bool
	}{
		{booking.StatusPending, true, true},
		{booking.StatusPending, false, false},
		{booking.StatusConfirmed, false, true},
		{booking.StatusCompleted, false, true},
		{booking.StatusNoShow, false, true},
		{booking.StatusCancelled, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, booking.StatusOccupies(tc.status, tc.pendingOccupies))
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	b := builder.NewBookingBuilder().MustConfirmed()
	require.NoError(t, b.Cancel(customerOf(b), "sick", b.Start().Add(-time.Hour)))

	again := booking.Reconstruct(b.Record())
	assert.Equal(t, b.Record(), again.Record())
	assert.Empty(t, again.PullNotifications())
}
