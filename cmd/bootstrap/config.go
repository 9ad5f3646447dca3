package bootstrap

import (
	"booking-engine/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
	ConfigPartsOption,
)

// ConfigPartsOption exposes the sections of config.Config that constructors
// take on their own.
var ConfigPartsOption = fx.Provide(
	func(cfg config.Config) config.CacheConfig { return cfg.Cache },
	func(cfg config.Config) config.BookingConfig { return cfg.Booking },
	func(cfg config.Config) config.OutboxConfig { return cfg.Outbox },
	func(cfg config.Config) config.StripeConfig { return cfg.Stripe },
)
