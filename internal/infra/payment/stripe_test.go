//go:build unit

package payment

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"booking-engine/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

type fakeStripe struct {
	intents   []*stripe.PaymentIntentParams
	refunds   []*stripe.RefundParams
	cancelled []string
	found     *stripe.PaymentIntent
	err       error
	cancelErr error
}

func (f *fakeStripe) CreateIntent(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.intents = append(f.intents, p)
	return &stripe.PaymentIntent{ID: "pi_123"}, nil
}

func (f *fakeStripe) CancelIntent(id string, _ *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return &stripe.PaymentIntent{ID: id}, nil
}

func (f *fakeStripe) FindIntentByBooking(context.Context, string) (*stripe.PaymentIntent, error) {
	return f.found, f.err
}

func (f *fakeStripe) CreateRefund(p *stripe.RefundParams) (*stripe.Refund, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.refunds = append(f.refunds, p)
	return &stripe.Refund{ID: "re_1"}, nil
}

func paymentRequest(kind booking.PaymentKind, ref string) booking.PaymentRequest {
	return booking.PaymentRequest{
		Kind:        kind,
		BookingID:   uuid.MustParse("6f1c1d2e-0000-4000-8000-000000000001"),
		AmountCents: 2500,
		PaymentRef:  ref,
		Email:       "ann@example.com",
		RequestedAt: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStripeGateway_RequestDepositCapture(t *testing.T) {
	api := &fakeStripe{}
	g := newStripeGateway(api, "eur")
	req := paymentRequest(booking.PaymentCapture, "")

	ref, err := g.RequestDepositCapture(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "pi_123", ref)
	require.Len(t, api.intents, 1)
	p := api.intents[0]
	assert.Equal(t, int64(2500), *p.Amount)
	assert.Equal(t, "eur", *p.Currency)
	assert.Equal(t, "ann@example.com", *p.ReceiptEmail)
	assert.Equal(t, req.BookingID.String(), p.Metadata[MetadataBookingID])
	assert.Equal(t, idempotencyKey(req), *p.IdempotencyKey)
}

func TestStripeGateway_RequestRefund(t *testing.T) {
	t.Run("refunds against the payment intent", func(t *testing.T) {
		api := &fakeStripe{}
		g := newStripeGateway(api, "usd")

		require.NoError(t, g.RequestRefund(context.Background(), paymentRequest(booking.PaymentRefund, "pi_9")))

		require.Len(t, api.refunds, 1)
		assert.Equal(t, "pi_9", *api.refunds[0].PaymentIntent)
		assert.Equal(t, int64(2500), *api.refunds[0].Amount)
	})

	t.Run("missing reference is an error", func(t *testing.T) {
		g := newStripeGateway(&fakeStripe{}, "usd")
		assert.Error(t, g.RequestRefund(context.Background(), paymentRequest(booking.PaymentRefund, "")))
	})

	t.Run("stripe failure is returned for retry", func(t *testing.T) {
		g := newStripeGateway(&fakeStripe{err: errors.New("rate limited")}, "usd")
		assert.Error(t, g.RequestRefund(context.Background(), paymentRequest(booking.PaymentRefund, "pi_9")))
	})
}

func TestStripeGateway_VoidDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("looks the intent up by booking", func(t *testing.T) {
		api := &fakeStripe{found: &stripe.PaymentIntent{ID: "pi_found"}}
		require.NoError(t, newStripeGateway(api, "usd").VoidDeposit(ctx, paymentRequest(booking.PaymentVoid, "")))
		assert.Equal(t, []string{"pi_found"}, api.cancelled)
	})

	t.Run("nothing to void", func(t *testing.T) {
		api := &fakeStripe{}
		require.NoError(t, newStripeGateway(api, "usd").VoidDeposit(ctx, paymentRequest(booking.PaymentVoid, "")))
		assert.Empty(t, api.cancelled)
	})

	t.Run("already succeeded intent is left to the late payment path", func(t *testing.T) {
		api := &fakeStripe{cancelErr: &stripe.Error{Code: stripe.ErrorCodePaymentIntentUnexpectedState}}
		assert.NoError(t, newStripeGateway(api, "usd").VoidDeposit(ctx, paymentRequest(booking.PaymentVoid, "pi_1")))
	})

	t.Run("other cancel failures are returned", func(t *testing.T) {
		api := &fakeStripe{cancelErr: errors.New("timeout")}
		assert.Error(t, newStripeGateway(api, "usd").VoidDeposit(ctx, paymentRequest(booking.PaymentVoid, "pi_1")))
	})
}

func TestIdempotencyKey_StablePerRequest(t *testing.T) {
	req := paymentRequest(booking.PaymentRefund, "pi_1")
	assert.Equal(t, idempotencyKey(req), idempotencyKey(req))

	later := req
	later.RequestedAt = req.RequestedAt.Add(time.Second)
	assert.NotEqual(t, idempotencyKey(req), idempotencyKey(later))
}

func TestLogGateway(t *testing.T) {
	var buf bytes.Buffer
	g := NewLogGateway(slog.New(slog.NewJSONHandler(&buf, nil)))
	req := paymentRequest(booking.PaymentCapture, "")

	ref, err := g.RequestDepositCapture(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "log_"+req.BookingID.String(), ref)
	assert.Contains(t, buf.String(), `"kind":"capture"`)
	assert.NoError(t, g.RequestRefund(context.Background(), req))
	assert.NoError(t, g.VoidDeposit(context.Background(), req))
}
