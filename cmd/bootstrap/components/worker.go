package components

import (
	"context"

	"booking-engine/internal/usecase/outbox"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		outbox.NewRelay,
	),
	fx.Invoke(startRelay),
)

// startRelay runs the outbox relay for the lifetime of the app and waits for
// the in-flight batch on shutdown.
func startRelay(lc fx.Lifecycle, relay *outbox.Relay) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				relay.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
