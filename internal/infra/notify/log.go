package notify

import (
	"context"
	"log/slog"

	"booking-engine/internal/usecase/shared"
)

// LogPublisher writes notifications to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

var _ shared.Publisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "notifications")}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, key, payload []byte) error {
	p.logger.InfoContext(ctx, "notification",
		"topic", topic,
		"booking_id", string(key),
		"payload", string(payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
