//go:build unit

package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/outbox"
	"booking-engine/internal/usecase/shared"
	"booking-engine/tests/common/memstore"
	sharedmock "booking-engine/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type relayEnv struct {
	store     *memstore.Store
	clock     *clock.MockClock
	publisher *sharedmock.MockPublisher
	payments  *sharedmock.MockPaymentGateway
	relay     *outbox.Relay
	cfg       config.OutboxConfig
}

func newRelayEnv(t *testing.T) *relayEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	env := &relayEnv{
		store:     memstore.New(),
		clock:     clock.NewMockClock(memstore.At(8, 0)),
		publisher: sharedmock.NewMockPublisher(ctrl),
		payments:  sharedmock.NewMockPaymentGateway(ctrl),
		cfg:       config.NewTestConfig().Outbox,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.relay = outbox.NewRelay(env.store, env.publisher, env.payments, env.clock, logger, env.cfg)
	return env
}

func (e *relayEnv) enqueue(t *testing.T, msgs ...shared.OutboxMessage) {
	t.Helper()
	err := e.store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Outbox().Enqueue(ctx, tx.DB(), msgs...)
	})
	require.NoError(t, err)
}

func notification(at time.Time) shared.OutboxMessage {
	return shared.OutboxMessage{
		ID:          uuid.New(),
		Kind:        shared.OutboxNotification,
		Topic:       string(booking.EventCancelled),
		AggregateID: uuid.New(),
		Payload:     []byte(`{"type":"booking.cancelled.v1"}`),
		AvailableAt: at,
	}
}

func payment(t *testing.T, req booking.PaymentRequest, at time.Time) shared.OutboxMessage {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	return shared.OutboxMessage{
		ID:          uuid.New(),
		Kind:        shared.OutboxPayment,
		Topic:       "payment." + string(req.Kind),
		AggregateID: req.BookingID,
		Payload:     payload,
		AvailableAt: at,
	}
}

func TestRelay_Tick(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes notifications keyed by booking", func(t *testing.T) {
		env := newRelayEnv(t)
		msg := notification(env.clock.Now())
		env.enqueue(t, msg)

		env.publisher.EXPECT().
			Publish(gomock.Any(), msg.Topic, []byte(msg.AggregateID.String()), msg.Payload).
			Return(nil)

		n, err := env.relay.Tick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Empty(t, env.store.Outbox())
	})

	t.Run("routes payment intents by kind", func(t *testing.T) {
		env := newRelayEnv(t)
		bookingID := uuid.New()
		capture := booking.PaymentRequest{Kind: booking.PaymentCapture, BookingID: bookingID, AmountCents: 5000, Email: "ada@example.com", RequestedAt: env.clock.Now()}
		refund := booking.PaymentRequest{Kind: booking.PaymentRefund, BookingID: bookingID, AmountCents: 2500, PaymentRef: "pi_1", RequestedAt: env.clock.Now()}
		void := booking.PaymentRequest{Kind: booking.PaymentVoid, BookingID: bookingID, AmountCents: 5000, RequestedAt: env.clock.Now()}
		env.enqueue(t, payment(t, capture, env.clock.Now()), payment(t, refund, env.clock.Now()), payment(t, void, env.clock.Now()))

		gomock.InOrder(
			env.payments.EXPECT().RequestDepositCapture(gomock.Any(), capture).Return("pi_1", nil),
			env.payments.EXPECT().RequestRefund(gomock.Any(), refund).Return(nil),
			env.payments.EXPECT().VoidDeposit(gomock.Any(), void).Return(nil),
		)

		n, err := env.relay.Tick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("failed delivery is retried after backoff", func(t *testing.T) {
		env := newRelayEnv(t)
		msg := notification(env.clock.Now())
		env.enqueue(t, msg)

		env.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("broker unavailable"))

		n, err := env.relay.Tick(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		pending := env.store.Outbox()
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].Attempts)
		assert.Equal(t, env.clock.Now().Add(env.cfg.PollEvery), pending[0].AvailableAt)

		// not due yet
		n, err = env.relay.Tick(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		env.clock.Add(env.cfg.PollEvery)
		env.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		n, err = env.relay.Tick(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Empty(t, env.store.Outbox())
	})

	t.Run("gives up after the attempt limit", func(t *testing.T) {
		env := newRelayEnv(t)
		msg := notification(env.clock.Now())
		env.enqueue(t, msg)

		env.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("broker unavailable")).
			Times(env.cfg.MaxAttempts)

		for range env.cfg.MaxAttempts {
			_, err := env.relay.Tick(ctx)
			require.NoError(t, err)
			env.clock.Add(time.Hour)
		}

		dead := env.store.Dead()
		assert.Contains(t, dead, msg.ID)
		assert.Contains(t, dead[msg.ID], "broker unavailable")

		n, err := env.relay.Tick(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("unknown kind is parked at once", func(t *testing.T) {
		env := newRelayEnv(t)
		msg := notification(env.clock.Now())
		msg.Kind = "sms"
		env.enqueue(t, msg)

		_, err := env.relay.Tick(ctx)
		require.NoError(t, err)
		assert.Contains(t, env.store.Dead(), msg.ID)
	})

	t.Run("malformed payment payload is retried", func(t *testing.T) {
		env := newRelayEnv(t)
		msg := notification(env.clock.Now())
		msg.Kind = shared.OutboxPayment
		msg.Payload = []byte("{")
		env.enqueue(t, msg)

		_, err := env.relay.Tick(ctx)
		require.NoError(t, err)
		require.Len(t, env.store.Outbox(), 1)
		assert.Equal(t, 1, env.store.Outbox()[0].Attempts)
	})
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	env := newRelayEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		env.relay.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestBackoff(t *testing.T) {
	base := 2 * time.Second
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{8, 256 * time.Second},
		{9, 5 * time.Minute},
		{40, 5 * time.Minute},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, outbox.Backoff(tc.attempt, base), "attempt %d", tc.attempt)
	}
}
