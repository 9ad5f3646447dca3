package components

import (
	"booking-engine/internal/handler"
	"booking-engine/internal/handler/api"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/infra/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSlotHandler,
		api.NewBookingHandler,
		api.NewAvailabilityHandler,
		api.NewStripeWebhookHandler,
		NewHealthHandler,
		NewHandlers,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHealthHandler(pool *pgxpool.Pool) *api.HealthHandler {
	return api.NewHealthHandler(db.ReadyCheck(pool))
}

func NewHandlers(
	health *api.HealthHandler,
	slots *api.SlotHandler,
	bookings *api.BookingHandler,
	availability *api.AvailabilityHandler,
	webhook *api.StripeWebhookHandler,
) handler.Handlers {
	return handler.Handlers{
		Health:       health,
		Slots:        slots,
		Bookings:     bookings,
		Availability: availability,
		Webhook:      webhook,
	}
}
