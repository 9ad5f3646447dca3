package bootstrap

import (
	"log/slog"

	"booking-engine/internal/infra/payment"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		NewPaymentGateway,
	),
)

func NewPaymentGateway(cfg config.Config, logger *slog.Logger) shared.PaymentGateway {
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, payment requests are only logged")
		return payment.NewLogGateway(logger)
	}
	return payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Booking.Currency)
}
