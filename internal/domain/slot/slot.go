// Package slot derives bookable time slots from availability rules.
// Everything here is pure: identical input yields identical output.
package slot

import (
	"slices"
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timerange"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errs.Validation("date must be YYYY-MM-DD")

type TimeSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// Input is everything besides the rule that the generator looks at.
// Booked holds the windows of slot-occupying bookings; Blocked the provider's blocks.
type Input struct {
	Date     time.Time
	Duration int
	Location *time.Location
	Booked   []timerange.Range
	Blocked  []timerange.Range
	Now      time.Time
}

// ParseDate reads a calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// DayBounds returns [midnight, next midnight) of date in loc.
func DayBounds(date time.Time, loc *time.Location) timerange.Range {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return timerange.Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// Generate walks one rule's window in steps of in.Duration. Slots that would
// run past the window end are dropped and slots starting at or before Now are
// suppressed. Slots overlapping the break, a booking or a block are emitted
// unavailable. A break spanning the whole window yields no slots.
func Generate(in Input, rule *availability.Rule) []TimeSlot {
	if in.Duration <= 0 {
		return nil
	}
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	step := time.Duration(in.Duration) * time.Minute
	windowEnd := rule.End().On(in.Date, loc)

	var brk *timerange.Range
	if b := rule.Break(); b != nil {
		if !rule.Start().Before(b.Start) && !b.End.Before(rule.End()) {
			return nil
		}
		brk = &timerange.Range{Start: b.Start.On(in.Date, loc), End: b.End.On(in.Date, loc)}
	}

	var out []TimeSlot
	for cursor := rule.Start().On(in.Date, loc); !cursor.Add(step).After(windowEnd); cursor = cursor.Add(step) {
		if timerange.IsPast(cursor, in.Now) {
			continue
		}
		candidate := timerange.Range{Start: cursor, End: cursor.Add(step)}

		available := true
		switch {
		case brk != nil && candidate.Overlaps(*brk):
			available = false
		case candidate.OverlapsAny(in.Booked):
			available = false
		case candidate.OverlapsAny(in.Blocked):
			available = false
		}

		out = append(out, TimeSlot{
			Start:     candidate.Start.UTC(),
			End:       candidate.End.UTC(),
			Available: available,
		})
	}
	return out
}

// GenerateDay runs Generate for every rule on the date's weekday and returns
// the slots sorted by start. Overlapping rules may yield equal starts; those
// keep rule order.
func GenerateDay(in Input, rules []*availability.Rule) []TimeSlot {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	weekday := in.Date.In(loc).Weekday()

	out := []TimeSlot{}
	for _, r := range rules {
		if !r.AppliesTo(weekday) {
			continue
		}
		out = append(out, Generate(in, r)...)
	}
	slices.SortStableFunc(out, func(a, b TimeSlot) int {
		return a.Start.Compare(b.Start)
	})
	return out
}

// IsOffered reports whether a generated slot, available or not, starts
// exactly at start.
func IsOffered(slots []TimeSlot, start time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return true
		}
	}
	return false
}
