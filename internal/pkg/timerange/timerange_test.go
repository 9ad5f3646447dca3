//go:build unit

package timerange_test

import (
	"testing"
	"time"

	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timerange"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 3, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b timerange.Range
		want bool
	}{
		{"identical", timerange.Range{Start: at(9, 0), End: at(10, 0)}, timerange.Range{Start: at(9, 0), End: at(10, 0)}, true},
		{"partial", timerange.Range{Start: at(9, 0), End: at(10, 0)}, timerange.Range{Start: at(9, 30), End: at(10, 30)}, true},
		{"contained", timerange.Range{Start: at(9, 0), End: at(12, 0)}, timerange.Range{Start: at(10, 0), End: at(11, 0)}, true},
		{"touching end", timerange.Range{Start: at(9, 0), End: at(10, 0)}, timerange.Range{Start: at(10, 0), End: at(11, 0)}, false},
		{"touching start", timerange.Range{Start: at(10, 0), End: at(11, 0)}, timerange.Range{Start: at(9, 0), End: at(10, 0)}, false},
		{"disjoint", timerange.Range{Start: at(9, 0), End: at(10, 0)}, timerange.Range{Start: at(13, 0), End: at(14, 0)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestNew(t *testing.T) {
	_, err := timerange.New(at(10, 0), at(10, 0))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrValidation))

	r, err := timerange.New(at(10, 0), at(11, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, r.Duration())
}

func TestIsPast(t *testing.T) {
	now := at(12, 0)
	assert.True(t, timerange.IsPast(at(11, 59), now))
	assert.True(t, timerange.IsPast(now, now))
	assert.False(t, timerange.IsPast(at(12, 1), now))

	assert.True(t, timerange.FromDuration(at(11, 0), 60).HasElapsed(now))
	assert.False(t, timerange.FromDuration(at(11, 30), 60).HasElapsed(now))
}
