//go:build unit

package commands_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/slot"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/timerange"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"
	"booking-engine/internal/usecase/shared"
	"booking-engine/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type availabilityEnv struct {
	store   *memstore.Store
	cache   *memstore.Cache
	fx      memstore.Fixture
	useCase commands.AvailabilityCommands
	slots   queries.SlotQueries
}

func newAvailabilityEnv(t *testing.T) *availabilityEnv {
	t.Helper()
	cfg := config.NewTestConfig()
	store := memstore.New()
	cache := memstore.NewCache()
	clk := clock.NewMockClock(memstore.At(8, 0))

	return &availabilityEnv{
		store:   store,
		cache:   cache,
		fx:      memstore.Seed(store),
		useCase: commands.NewAvailabilityUseCase(store, cache, clk, cfg.Cache),
		slots:   queries.NewSlotQueries(store.CommandReads(), cache, clk, cfg.Cache, cfg.Booking),
	}
}

func (e *availabilityEnv) day(t *testing.T) []slot.TimeSlot {
	t.Helper()
	return e.dayOn(t, "2025-03-03")
}

func (e *availabilityEnv) dayOn(t *testing.T, date string) []slot.TimeSlot {
	t.Helper()
	slots, err := e.slots.ForDay(context.Background(), e.slotQuery(date))
	require.NoError(t, err)
	return slots
}

func (e *availabilityEnv) slotQuery(date string) queries.SlotQuery {
	return queries.SlotQuery{ProviderSlug: e.fx.Provider.Slug, Date: date, Duration: 60}
}

func (e *availabilityEnv) slotKey(gen int64, date string) shared.SlotKey {
	return shared.SlotKey{Slug: e.fx.Provider.Slug, Generation: gen, Date: date, Duration: 60}
}

// pausedReads holds a slot fill after it has loaded bookings, i.e. after all
// live data for the day was read, until resume is closed.
type pausedReads struct {
	shared.ScheduleReads
	loaded atomic.Bool
	resume chan struct{}
}

func (r *pausedReads) FindOverlappingBookings(ctx context.Context, providerID uuid.UUID, window timerange.Range, pendingOccupies bool) ([]timerange.Range, error) {
	out, err := r.ScheduleReads.FindOverlappingBookings(ctx, providerID, window, pendingOccupies)
	r.loaded.Store(true)
	<-r.resume
	return out, err
}

func availabilityAt(slots []slot.TimeSlot, start time.Time) (available, found bool) {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return s.Available, true
		}
	}
	return false, false
}

func strPtr(s string) *string { return &s }

func TestCreateRule(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the rule and drops cached slots", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		before := env.day(t)
		require.Len(t, before, 8)
		require.Equal(t, 1, env.cache.Len())

		rule, err := env.useCase.CreateRule(ctx, env.fx.Provider.ID, commands.CreateRuleRequest{
			Weekday:      int(time.Monday),
			StartTime:    "18:00",
			EndTime:      "20:00",
			SlotDuration: 60,
		})
		require.NoError(t, err)
		assert.Equal(t, env.fx.Provider.ID, rule.ProviderID())
		assert.Equal(t, 2, env.store.RuleCount())
		assert.Zero(t, env.cache.Len())

		assert.Len(t, env.day(t), 10)
	})

	t.Run("break inside the window", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		rule, err := env.useCase.CreateRule(ctx, env.fx.Provider.ID, commands.CreateRuleRequest{
			Weekday:      int(time.Tuesday),
			StartTime:    "09:00",
			EndTime:      "17:00",
			BreakStart:   strPtr("12:00"),
			BreakEnd:     strPtr("13:00"),
			SlotDuration: 30,
		})
		require.NoError(t, err)
		require.NotNil(t, rule.Break())
		assert.Equal(t, "12:00", rule.Break().Start.String())
	})

	cases := []struct {
		name string
		req  commands.CreateRuleRequest
		want error
	}{
		{
			name: "end before start",
			req:  commands.CreateRuleRequest{Weekday: 1, StartTime: "17:00", EndTime: "09:00", SlotDuration: 60},
			want: availability.ErrEndNotAfterStart,
		},
		{
			name: "malformed time",
			req:  commands.CreateRuleRequest{Weekday: 1, StartTime: "9am", EndTime: "17:00", SlotDuration: 60},
			want: availability.ErrInvalidClockTime,
		},
		{
			name: "weekday out of range",
			req:  commands.CreateRuleRequest{Weekday: 7, StartTime: "09:00", EndTime: "17:00", SlotDuration: 60},
			want: availability.ErrInvalidWeekday,
		},
		{
			name: "slot too short",
			req:  commands.CreateRuleRequest{Weekday: 1, StartTime: "09:00", EndTime: "17:00", SlotDuration: 10},
			want: availability.ErrInvalidSlotDuration,
		},
		{
			name: "break without end",
			req:  commands.CreateRuleRequest{Weekday: 1, StartTime: "09:00", EndTime: "17:00", BreakStart: strPtr("12:00"), SlotDuration: 60},
			want: availability.ErrIncompleteBreak,
		},
		{
			name: "break outside window",
			req: commands.CreateRuleRequest{
				Weekday: 1, StartTime: "09:00", EndTime: "17:00",
				BreakStart: strPtr("17:00"), BreakEnd: strPtr("18:00"), SlotDuration: 60,
			},
			want: availability.ErrBreakOutsideWindow,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newAvailabilityEnv(t)

			_, err := env.useCase.CreateRule(ctx, env.fx.Provider.ID, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, env.store.RuleCount())
			assert.Zero(t, env.cache.Invalidations)
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		_, err := env.useCase.CreateRule(ctx, uuid.New(), commands.CreateRuleRequest{
			Weekday: 1, StartTime: "09:00", EndTime: "10:00", SlotDuration: 60,
		})
		assert.ErrorIs(t, err, commands.ErrProviderNotFound)
		assert.Equal(t, 1, env.store.RuleCount())
	})
}

func TestUpdateRule(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		end := "12:00"

		updated, err := env.useCase.UpdateRule(ctx, env.fx.Provider.ID, env.fx.Rule.ID(), commands.UpdateRuleRequest{
			EndTime: &end,
		})
		require.NoError(t, err)
		assert.Equal(t, "09:00", updated.Start().String())
		assert.Equal(t, "12:00", updated.End().String())
		assert.Equal(t, 60, updated.SlotDuration())
		assert.Equal(t, 1, env.cache.Invalidations)

		assert.Len(t, env.day(t), 3)
	})

	t.Run("merged result is re-validated", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		start := "18:00"

		_, err := env.useCase.UpdateRule(ctx, env.fx.Provider.ID, env.fx.Rule.ID(), commands.UpdateRuleRequest{
			StartTime: &start,
		})
		assert.ErrorIs(t, err, availability.ErrEndNotAfterStart)
	})

	t.Run("rule of another provider", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		other := memstore.Seed(env.store)

		_, err := env.useCase.UpdateRule(ctx, env.fx.Provider.ID, other.Rule.ID(), commands.UpdateRuleRequest{})
		assert.ErrorIs(t, err, commands.ErrRuleNotFound)
	})
}

func TestDeleteRule(t *testing.T) {
	ctx := context.Background()
	env := newAvailabilityEnv(t)
	env.day(t)

	require.NoError(t, env.useCase.DeleteRule(ctx, env.fx.Provider.ID, env.fx.Rule.ID()))
	assert.Zero(t, env.store.RuleCount())
	assert.Empty(t, env.day(t))

	err := env.useCase.DeleteRule(ctx, env.fx.Provider.ID, env.fx.Rule.ID())
	assert.ErrorIs(t, err, commands.ErrRuleNotFound)
}

func TestBlockedSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("a new block is visible to the next slot query", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		available, found := availabilityAt(env.day(t), memstore.At(12, 0))
		require.True(t, found)
		require.True(t, available)

		blocked, err := env.useCase.CreateBlockedSlot(ctx, env.fx.Provider.ID, commands.CreateBlockedSlotRequest{
			Start:  memstore.At(12, 0),
			End:    memstore.At(13, 0),
			Reason: "Team lunch",
		})
		require.NoError(t, err)
		assert.Equal(t, availability.RecurrenceNone, blocked.Recurrence())

		available, found = availabilityAt(env.day(t), memstore.At(12, 0))
		assert.True(t, found)
		assert.False(t, available)

		require.NoError(t, env.useCase.DeleteBlockedSlot(ctx, env.fx.Provider.ID, blocked.ID()))
		available, _ = availabilityAt(env.day(t), memstore.At(12, 0))
		assert.True(t, available)
	})

	t.Run("every cached date of the provider is dropped", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		env.dayOn(t, "2025-03-03")
		env.dayOn(t, "2025-03-10")
		require.True(t, env.cache.Has(env.slotKey(0, "2025-03-03")))
		require.True(t, env.cache.Has(env.slotKey(0, "2025-03-10")))

		_, err := env.useCase.CreateBlockedSlot(ctx, env.fx.Provider.ID, commands.CreateBlockedSlotRequest{
			Start: memstore.At(13, 0),
			End:   memstore.At(14, 0),
		})
		require.NoError(t, err)

		assert.False(t, env.cache.Has(env.slotKey(0, "2025-03-03")))
		assert.False(t, env.cache.Has(env.slotKey(0, "2025-03-10")))
		available, found := availabilityAt(env.day(t), memstore.At(13, 0))
		assert.True(t, found)
		assert.False(t, available)
	})

	t.Run("a fill that read before the block cannot serve the blocked window", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		cfg := config.NewTestConfig()
		reads := &pausedReads{ScheduleReads: env.store.CommandReads(), resume: make(chan struct{})}
		slowSlots := queries.NewSlotQueries(reads, env.cache, clock.NewMockClock(memstore.At(8, 0)), cfg.Cache, cfg.Booking)

		filled := make(chan error, 1)
		go func() {
			_, err := slowSlots.ForDay(context.Background(), env.slotQuery("2025-03-03"))
			filled <- err
		}()
		require.Eventually(t, reads.loaded.Load, time.Second, 5*time.Millisecond)

		_, err := env.useCase.CreateBlockedSlot(ctx, env.fx.Provider.ID, commands.CreateBlockedSlotRequest{
			Start: memstore.At(13, 0),
			End:   memstore.At(14, 0),
		})
		require.NoError(t, err)

		close(reads.resume)
		require.NoError(t, <-filled)

		available, found := availabilityAt(env.day(t), memstore.At(13, 0))
		assert.True(t, found)
		assert.False(t, available, "13:00 must stay unavailable once the block committed")
	})

	t.Run("end must follow start", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		_, err := env.useCase.CreateBlockedSlot(ctx, env.fx.Provider.ID, commands.CreateBlockedSlotRequest{
			Start: memstore.At(13, 0),
			End:   memstore.At(13, 0),
		})
		assert.ErrorIs(t, err, availability.ErrBlockedEndNotAfterStart)
	})

	t.Run("unknown block", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		err := env.useCase.DeleteBlockedSlot(ctx, env.fx.Provider.ID, uuid.New())
		assert.ErrorIs(t, err, commands.ErrBlockedSlotNotFound)
	})

	t.Run("failed invalidation is retried and the write still succeeds", func(t *testing.T) {
		env := newAvailabilityEnv(t)
		env.day(t)
		env.cache.FailInvalidations = 2

		_, err := env.useCase.CreateBlockedSlot(ctx, env.fx.Provider.ID, commands.CreateBlockedSlotRequest{
			Start: memstore.At(9, 0),
			End:   memstore.At(10, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, env.cache.Invalidations)
		assert.Zero(t, env.cache.Len())
	})
}
