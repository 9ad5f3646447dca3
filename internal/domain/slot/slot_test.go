//go:build unit

package slot_test

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/slot"
	"booking-engine/internal/pkg/timerange"
	"booking-engine/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-03 is a Monday.
var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 3, hour, minute, 0, 0, time.UTC)
}

func baseInput() slot.Input {
	return slot.Input{
		Date:     monday,
		Duration: 60,
		Location: time.UTC,
		Now:      at(8, 0),
	}
}

func mondayRule() *availability.Rule {
	return builder.NewRuleBuilder().MustBuild()
}

func TestGenerate_FullDay(t *testing.T) {
	got := slot.Generate(baseInput(), mondayRule())

	require.Len(t, got, 8)
	for _, s := range got {
		assert.True(t, s.Available)
		assert.Equal(t, time.Hour, s.End.Sub(s.Start))
	}
	assert.Equal(t, at(9, 0), got[0].Start)
	assert.Equal(t, at(10, 0), got[0].End)
	assert.Equal(t, at(16, 0), got[7].Start)
	assert.Equal(t, at(17, 0), got[7].End)
}

func TestGenerate_BookedSlotIsUnavailable(t *testing.T) {
	in := baseInput()
	in.Booked = []timerange.Range{{Start: at(13, 0), End: at(14, 0)}}

	got := slot.Generate(in, mondayRule())

	require.Len(t, got, 8)
	for _, s := range got {
		if s.Start.Equal(at(13, 0)) {
			assert.False(t, s.Available, "13:00 slot must be unavailable")
			continue
		}
		assert.True(t, s.Available, "slot %s", s.Start)
	}
}

func TestGenerate_UnavailabilityReasons(t *testing.T) {
	t.Run("break", func(t *testing.T) {
		rule := builder.NewRuleBuilder().WithBreak("12:00", "13:00").MustBuild()
		got := slot.Generate(baseInput(), rule)

		require.Len(t, got, 8)
		assert.False(t, got[3].Available)
		assert.True(t, got[2].Available, "slot ending at break start touches only")
		assert.True(t, got[4].Available, "slot starting at break end touches only")
	})

	t.Run("blocked interval partially covering two slots", func(t *testing.T) {
		in := baseInput()
		in.Blocked = []timerange.Range{{Start: at(10, 30), End: at(11, 30)}}
		got := slot.Generate(in, mondayRule())

		assert.False(t, got[1].Available)
		assert.False(t, got[2].Available)
		assert.True(t, got[3].Available)
	})
}

func TestGenerate_PastSlotsSuppressed(t *testing.T) {
	in := baseInput()
	in.Now = at(11, 0)

	got := slot.Generate(in, mondayRule())

	require.Len(t, got, 5)
	assert.Equal(t, at(12, 0), got[0].Start, "slot starting exactly now is suppressed")
}

func TestGenerate_PartialTrailingSlotDropped(t *testing.T) {
	rule := builder.NewRuleBuilder().WithWindow("09:00", "11:30").MustBuild()
	got := slot.Generate(baseInput(), rule)

	require.Len(t, got, 2)
	assert.Equal(t, at(11, 0), got[1].End)
}

func TestGenerate_EmptyResults(t *testing.T) {
	t.Run("duration longer than the window", func(t *testing.T) {
		rule := builder.NewRuleBuilder().WithWindow("09:00", "10:00").MustBuild()
		in := baseInput()
		in.Duration = 90
		assert.Empty(t, slot.Generate(in, rule))
	})

	t.Run("break consuming the whole window", func(t *testing.T) {
		rule := builder.NewRuleBuilder().WithWindow("09:00", "10:00").WithBreak("09:00", "10:00").MustBuild()
		assert.Empty(t, slot.Generate(baseInput(), rule))
	})

	t.Run("no rule for the weekday", func(t *testing.T) {
		rule := builder.NewRuleBuilder().WithWeekday(time.Tuesday).MustBuild()
		assert.Empty(t, slot.GenerateDay(baseInput(), []*availability.Rule{rule}))
	})
}

func TestGenerateDay_SplitShiftsAreMergedInOrder(t *testing.T) {
	afternoon := builder.NewRuleBuilder().WithWindow("14:00", "16:00").MustBuild()
	morning := builder.NewRuleBuilder().WithWindow("09:00", "11:00").MustBuild()

	got := slot.GenerateDay(baseInput(), []*availability.Rule{afternoon, morning})

	want := []slot.TimeSlot{
		{Start: at(9, 0), End: at(10, 0), Available: true},
		{Start: at(10, 0), End: at(11, 0), Available: true},
		{Start: at(14, 0), End: at(15, 0), Available: true},
		{Start: at(15, 0), End: at(16, 0), Available: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GenerateDay mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Properties(t *testing.T) {
	durations := []int{15, 25, 45, 60, 90, 240}
	rule := builder.NewRuleBuilder().WithWindow("07:10", "21:40").WithBreak("12:00", "12:45").MustBuild()

	for _, d := range durations {
		in := baseInput()
		in.Duration = d
		in.Booked = []timerange.Range{{Start: at(15, 0), End: at(15, 50)}}

		got := slot.GenerateDay(in, []*availability.Rule{rule})
		for i, s := range got {
			assert.Equal(t, time.Duration(d)*time.Minute, s.End.Sub(s.Start))
			if i > 0 {
				assert.True(t, got[i-1].Start.Before(s.Start), "strictly ascending for duration %d", d)
			}
		}

		again := slot.GenerateDay(in, []*availability.Rule{rule})
		first, err := json.Marshal(got)
		require.NoError(t, err)
		second, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), "generation must be idempotent")
	}
}

func TestGenerate_ProviderLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date, err := slot.ParseDate("2025-03-03", loc)
	require.NoError(t, err)

	in := slot.Input{Date: date, Duration: 60, Location: loc, Now: date}
	got := slot.GenerateDay(in, []*availability.Rule{mondayRule()})

	require.Len(t, got, 8)
	assert.Equal(t, time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC), got[0].Start, "09:00 EST is 14:00 UTC")
}

func TestParseDate(t *testing.T) {
	_, err := slot.ParseDate("03/03/2025", time.UTC)
	assert.ErrorIs(t, err, slot.ErrInvalidDate)
}

func TestIsOffered(t *testing.T) {
	in := baseInput()
	in.Booked = []timerange.Range{{Start: at(13, 0), End: at(14, 0)}}
	got := slot.Generate(in, mondayRule())

	assert.True(t, slot.IsOffered(got, at(9, 0)))
	assert.True(t, slot.IsOffered(got, at(13, 0)), "unavailable slot is still generated")
	assert.False(t, slot.IsOffered(got, at(9, 30)), "misaligned start")
}
