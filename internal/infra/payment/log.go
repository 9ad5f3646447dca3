package payment

import (
	"context"
	"log/slog"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/usecase/shared"
)

// LogGateway records payment requests without moving money. It backs local
// development when no Stripe key is configured.
type LogGateway struct {
	logger *slog.Logger
}

var _ shared.PaymentGateway = (*LogGateway)(nil)

func NewLogGateway(logger *slog.Logger) *LogGateway {
	return &LogGateway{logger: logger.With("component", "payments")}
}

func (g *LogGateway) RequestDepositCapture(ctx context.Context, req booking.PaymentRequest) (string, error) {
	g.log(ctx, req)
	return "log_" + req.BookingID.String(), nil
}

func (g *LogGateway) RequestRefund(ctx context.Context, req booking.PaymentRequest) error {
	g.log(ctx, req)
	return nil
}

func (g *LogGateway) VoidDeposit(ctx context.Context, req booking.PaymentRequest) error {
	g.log(ctx, req)
	return nil
}

func (g *LogGateway) log(ctx context.Context, req booking.PaymentRequest) {
	g.logger.InfoContext(ctx, "payment requested",
		"kind", string(req.Kind),
		"booking_id", req.BookingID.String(),
		"amount_cents", req.AmountCents,
		"payment_ref", req.PaymentRef)
}
