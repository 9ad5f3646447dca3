package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"booking-engine/internal/pkg/errs"
)

const (
	MinSlotDuration   = 15
	MaxSlotDuration   = 240
	MaxReasonLength   = 500
	minutesPerDay     = 24 * 60
	clockLayoutLength = len("15:04")
)

var (
	ErrInvalidClockTime    = errs.Validation("time must be HH:MM between 00:00 and 24:00")
	ErrInvalidWeekday      = errs.Validation("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidSlotDuration = errs.Validation("slot duration must be between 15 and 240 minutes")
	ErrInvalidRecurrence   = errs.Validation("recurrence must be none, weekly or monthly")
	ErrReasonTooLong       = errs.Validation("reason must be at most 500 characters")
)

// ClockTime is a wall-clock time of day with minute precision, stored as
// minutes after midnight. 24:00 is allowed as an end-of-day bound.
type ClockTime struct {
	minutes int
}

func NewClockTime(hour, minute int) (ClockTime, error) {
	total := hour*60 + minute
	if hour < 0 || minute < 0 || minute > 59 || total > minutesPerDay {
		return ClockTime{}, ErrInvalidClockTime
	}
	return ClockTime{minutes: total}, nil
}

func ClockTimeFromMinutes(minutes int) (ClockTime, error) {
	if minutes < 0 || minutes > minutesPerDay {
		return ClockTime{}, ErrInvalidClockTime
	}
	return ClockTime{minutes: minutes}, nil
}

// ParseClockTime accepts "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if len(s) != clockLayoutLength || s[2] != ':' {
		return ClockTime{}, ErrInvalidClockTime
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil {
		return ClockTime{}, ErrInvalidClockTime
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil {
		return ClockTime{}, ErrInvalidClockTime
	}
	return NewClockTime(hour, minute)
}

func (c ClockTime) Minutes() int { return c.minutes }

func (c ClockTime) Before(other ClockTime) bool { return c.minutes < other.minutes }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.minutes/60, c.minutes%60)
}

// On anchors the clock time to the calendar date of day in loc.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.minutes/60, c.minutes%60, 0, 0, loc)
}

func NewWeekday(day int) (time.Weekday, error) {
	if day < int(time.Sunday) || day > int(time.Saturday) {
		return 0, ErrInvalidWeekday
	}
	return time.Weekday(day), nil
}

func ValidateSlotDuration(minutes int) error {
	if minutes < MinSlotDuration || minutes > MaxSlotDuration {
		return ErrInvalidSlotDuration
	}
	return nil
}

// Recurrence is a label on blocked slots. It has no expansion semantics.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func NewRecurrence(s string) (Recurrence, error) {
	if s == "" {
		return RecurrenceNone, nil
	}
	r := Recurrence(s)
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceMonthly:
		return r, nil
	default:
		return "", ErrInvalidRecurrence
	}
}

func (r Recurrence) String() string { return string(r) }

type Reason struct {
	value string
}

func NewReason(s string) (Reason, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxReasonLength {
		return Reason{}, ErrReasonTooLong
	}
	return Reason{value: s}, nil
}

func (r Reason) String() string { return r.value }
func (r Reason) IsEmpty() bool  { return r.value == "" }
