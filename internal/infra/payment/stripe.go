// Package payment adapts the payment boundary to Stripe.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// MetadataBookingID tags every PaymentIntent with the booking it pays for.
const MetadataBookingID = "booking_id"

// stripeAPI is the slice of the Stripe client the gateway uses.
type stripeAPI interface {
	CreateIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	CancelIntent(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
	FindIntentByBooking(ctx context.Context, bookingID string) (*stripe.PaymentIntent, error)
	CreateRefund(params *stripe.RefundParams) (*stripe.Refund, error)
}

type StripeGateway struct {
	api      stripeAPI
	currency string
}

var _ shared.PaymentGateway = (*StripeGateway)(nil)

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	return newStripeGateway(&stripeClient{sc: client.New(secretKey, nil)}, currency)
}

func newStripeGateway(api stripeAPI, currency string) *StripeGateway {
	return &StripeGateway{api: api, currency: currency}
}

// RequestDepositCapture creates the PaymentIntent for the deposit. The
// booking is confirmed once Stripe reports payment_intent.succeeded.
func (g *StripeGateway) RequestDepositCapture(ctx context.Context, req booking.PaymentRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey(req))
	params.AddMetadata(MetadataBookingID, req.BookingID.String())

	pi, err := g.api.CreateIntent(params)
	if err != nil {
		return "", errs.Wrap(err, "stripe: create payment intent")
	}
	return pi.ID, nil
}

func (g *StripeGateway) RequestRefund(ctx context.Context, req booking.PaymentRequest) error {
	if req.PaymentRef == "" {
		return errs.New("stripe: refund without a payment reference for booking " + req.BookingID.String())
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentRef),
		Amount:        stripe.Int64(req.AmountCents),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey(req))
	params.AddMetadata(MetadataBookingID, req.BookingID.String())

	if _, err := g.api.CreateRefund(params); err != nil {
		return errs.Wrap(err, "stripe: create refund")
	}
	return nil
}

// VoidDeposit cancels the deposit PaymentIntent of an unpaid booking. An
// intent that already succeeded is left alone: the late payment arrives
// through the webhook and is refunded from there.
func (g *StripeGateway) VoidDeposit(ctx context.Context, req booking.PaymentRequest) error {
	id := req.PaymentRef
	if id == "" {
		pi, err := g.api.FindIntentByBooking(ctx, req.BookingID.String())
		if err != nil {
			return errs.Wrap(err, "stripe: find payment intent")
		}
		if pi == nil {
			return nil
		}
		id = pi.ID
	}

	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey(req))

	if _, err := g.api.CancelIntent(id, params); err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
			return nil
		}
		return errs.Wrap(err, "stripe: cancel payment intent")
	}
	return nil
}

// idempotencyKey is stable across relay retries of the same request.
func idempotencyKey(req booking.PaymentRequest) string {
	return fmt.Sprintf("%s:%s:%s", req.Kind, req.BookingID, strconv.FormatInt(req.RequestedAt.UnixNano(), 36))
}

type stripeClient struct {
	sc *client.API
}

func (c *stripeClient) CreateIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.sc.PaymentIntents.New(params)
}

func (c *stripeClient) CancelIntent(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	return c.sc.PaymentIntents.Cancel(id, params)
}

func (c *stripeClient) FindIntentByBooking(ctx context.Context, bookingID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentSearchParams{}
	params.Query = fmt.Sprintf("metadata['%s']:'%s'", MetadataBookingID, bookingID)
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := c.sc.PaymentIntents.Search(params)
	if iter.Next() {
		return iter.PaymentIntent(), nil
	}
	return nil, iter.Err()
}

func (c *stripeClient) CreateRefund(params *stripe.RefundParams) (*stripe.Refund, error) {
	return c.sc.Refunds.New(params)
}
