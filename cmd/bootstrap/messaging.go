package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booking-engine/internal/infra/notify"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewPublisher,
	),
)

func NewPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.Publisher, error) {
	var (
		pub shared.Publisher
		err error
	)
	switch driver := strings.ToLower(strings.TrimSpace(cfg.Notify.Driver)); driver {
	case "kafka":
		pub, err = notify.NewKafkaPublisher(cfg.Kafka.Brokers)
	case "amqp":
		pub, err = notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	case "", "log":
		pub = notify.NewLogPublisher(logger)
	default:
		return nil, fmt.Errorf("unknown NOTIFY_DRIVER %q", driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("notification publisher ready", "driver", cfg.Notify.Driver)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}
