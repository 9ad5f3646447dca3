package availability

import (
	"time"

	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEndNotAfterStart      = errs.Validation("end time must be after start time")
	ErrIncompleteBreak       = errs.Validation("break start and break end must be given together")
	ErrBreakEndNotAfterStart = errs.Validation("break end must be after break start")
	ErrBreakOutsideWindow    = errs.Validation("break must lie within the rule's start and end")
)

// Break is an optional pause inside a rule's window.
type Break struct {
	Start ClockTime
	End   ClockTime
}

// Rule is a recurring weekly availability window for one provider.
type Rule struct {
	id           uuid.UUID
	providerID   uuid.UUID
	weekday      time.Weekday
	start        ClockTime
	end          ClockTime
	brk          *Break
	slotDuration int
	createdAt    time.Time
	updatedAt    time.Time
}

type RuleParams struct {
	Weekday      int
	Start        ClockTime
	End          ClockTime
	BreakStart   *ClockTime
	BreakEnd     *ClockTime
	SlotDuration int
}

func NewRule(id, providerID uuid.UUID, p RuleParams, now time.Time) (*Rule, error) {
	weekday, brk, err := validateRule(p)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Rule{
		id:           id,
		providerID:   providerID,
		weekday:      weekday,
		start:        p.Start,
		end:          p.End,
		brk:          brk,
		slotDuration: p.SlotDuration,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructRule rebuilds a persisted rule without validation.
func ReconstructRule(id, providerID uuid.UUID, weekday time.Weekday, start, end ClockTime, brk *Break, slotDuration int, createdAt, updatedAt time.Time) *Rule {
	return &Rule{
		id:           id,
		providerID:   providerID,
		weekday:      weekday,
		start:        start,
		end:          end,
		brk:          brk,
		slotDuration: slotDuration,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// RulePatch carries the fields of a partial update; nil keeps the current value.
// ClearBreak removes an existing break.
type RulePatch struct {
	Weekday      *int
	Start        *ClockTime
	End          *ClockTime
	BreakStart   *ClockTime
	BreakEnd     *ClockTime
	ClearBreak   bool
	SlotDuration *int
}

// Apply returns the merged rule after re-validating every invariant.
func (r *Rule) Apply(patch RulePatch, now time.Time) (*Rule, error) {
	p := r.Params()
	if patch.Weekday != nil {
		p.Weekday = *patch.Weekday
	}
	if patch.Start != nil {
		p.Start = *patch.Start
	}
	if patch.End != nil {
		p.End = *patch.End
	}
	if patch.ClearBreak {
		p.BreakStart, p.BreakEnd = nil, nil
	}
	if patch.BreakStart != nil {
		p.BreakStart = patch.BreakStart
	}
	if patch.BreakEnd != nil {
		p.BreakEnd = patch.BreakEnd
	}
	if patch.SlotDuration != nil {
		p.SlotDuration = *patch.SlotDuration
	}

	updated, err := NewRule(r.id, r.providerID, p, now)
	if err != nil {
		return nil, err
	}
	updated.createdAt = r.createdAt
	return updated, nil
}

func (r *Rule) Params() RuleParams {
	p := RuleParams{
		Weekday:      int(r.weekday),
		Start:        r.start,
		End:          r.end,
		SlotDuration: r.slotDuration,
	}
	if r.brk != nil {
		bs, be := r.brk.Start, r.brk.End
		p.BreakStart, p.BreakEnd = &bs, &be
	}
	return p
}

func validateRule(p RuleParams) (time.Weekday, *Break, error) {
	weekday, err := NewWeekday(p.Weekday)
	if err != nil {
		return 0, nil, err
	}
	if !p.Start.Before(p.End) {
		return 0, nil, ErrEndNotAfterStart
	}
	if err := ValidateSlotDuration(p.SlotDuration); err != nil {
		return 0, nil, err
	}
	if (p.BreakStart == nil) != (p.BreakEnd == nil) {
		return 0, nil, ErrIncompleteBreak
	}
	if p.BreakStart == nil {
		return weekday, nil, nil
	}
	if !p.BreakStart.Before(*p.BreakEnd) {
		return 0, nil, ErrBreakEndNotAfterStart
	}
	if p.BreakStart.Before(p.Start) || p.End.Before(*p.BreakEnd) {
		return 0, nil, ErrBreakOutsideWindow
	}
	return weekday, &Break{Start: *p.BreakStart, End: *p.BreakEnd}, nil
}

func (r *Rule) ID() uuid.UUID                 { return r.id }
func (r *Rule) ProviderID() uuid.UUID         { return r.providerID }
func (r *Rule) Weekday() time.Weekday         { return r.weekday }
func (r *Rule) Start() ClockTime              { return r.start }
func (r *Rule) End() ClockTime                { return r.end }
func (r *Rule) Break() *Break                 { return r.brk }
func (r *Rule) SlotDuration() int             { return r.slotDuration }
func (r *Rule) CreatedAt() time.Time          { return r.createdAt }
func (r *Rule) UpdatedAt() time.Time          { return r.updatedAt }
func (r *Rule) AppliesTo(d time.Weekday) bool { return r.weekday == d }
