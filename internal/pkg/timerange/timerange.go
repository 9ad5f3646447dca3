// Package timerange holds half-open instant intervals and the overlap rule
// shared by slot generation and booking admission.
package timerange

import (
	"time"

	"booking-engine/internal/pkg/errs"
)

var ErrInvalidRange = errs.Validation("range end must be after start")

// Range is the half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Range, error) {
	if !end.After(start) {
		return Range{}, ErrInvalidRange
	}
	return Range{Start: start, End: end}, nil
}

func FromDuration(start time.Time, minutes int) Range {
	return Range{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// Overlaps reports start1 < end2 && end1 > start2; touching edges do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

func (r Range) OverlapsAny(others []Range) bool {
	for _, o := range others {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsPast reports whether t is at or before now.
func IsPast(t, now time.Time) bool {
	return !t.After(now)
}

// HasElapsed reports whether the whole range lies at or before now.
func (r Range) HasElapsed(now time.Time) bool {
	return IsPast(r.End, now)
}
