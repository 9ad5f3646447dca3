//go:build unit || e2e

package builder

import (
	"time"

	"booking-engine/internal/domain/availability"
	reqdto "booking-engine/internal/handler/dto/request"

	"github.com/google/uuid"
)

type RuleBuilder struct {
	ID           uuid.UUID
	ProviderID   uuid.UUID
	Weekday      int
	Start        string
	End          string
	BreakStart   string
	BreakEnd     string
	SlotDuration int
	Now          time.Time
}

// NewRuleBuilder defaults to Monday 09:00-17:00 with 60 minute slots and no break.
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{
		ProviderID:   uuid.New(),
		Weekday:      int(time.Monday),
		Start:        "09:00",
		End:          "17:00",
		SlotDuration: 60,
		Now:          time.Now(),
	}
}

func (b *RuleBuilder) With(mutate func(*RuleBuilder)) *RuleBuilder {
	mutate(b)
	return b
}

func (b *RuleBuilder) WithWindow(start, end string) *RuleBuilder {
	b.Start, b.End = start, end
	return b
}

func (b *RuleBuilder) WithBreak(start, end string) *RuleBuilder {
	b.BreakStart, b.BreakEnd = start, end
	return b
}

func (b *RuleBuilder) WithWeekday(d time.Weekday) *RuleBuilder {
	b.Weekday = int(d)
	return b
}

func (b *RuleBuilder) WithSlotDuration(minutes int) *RuleBuilder {
	b.SlotDuration = minutes
	return b
}

func (b *RuleBuilder) Params() (availability.RuleParams, error) {
	start, err := availability.ParseClockTime(b.Start)
	if err != nil {
		return availability.RuleParams{}, err
	}
	end, err := availability.ParseClockTime(b.End)
	if err != nil {
		return availability.RuleParams{}, err
	}
	p := availability.RuleParams{
		Weekday:      b.Weekday,
		Start:        start,
		End:          end,
		SlotDuration: b.SlotDuration,
	}
	if b.BreakStart != "" {
		bs, err := availability.ParseClockTime(b.BreakStart)
		if err != nil {
			return availability.RuleParams{}, err
		}
		p.BreakStart = &bs
	}
	if b.BreakEnd != "" {
		be, err := availability.ParseClockTime(b.BreakEnd)
		if err != nil {
			return availability.RuleParams{}, err
		}
		p.BreakEnd = &be
	}
	return p, nil
}

func (b *RuleBuilder) BuildCreateRequestDTO() reqdto.CreateRuleRequest {
	weekday := b.Weekday
	req := reqdto.CreateRuleRequest{
		Weekday:      &weekday,
		StartTime:    b.Start,
		EndTime:      b.End,
		SlotDuration: b.SlotDuration,
	}
	if b.BreakStart != "" {
		start, end := b.BreakStart, b.BreakEnd
		req.BreakStart, req.BreakEnd = &start, &end
	}
	return req
}

func (b *RuleBuilder) BuildDomain() (*availability.Rule, error) {
	p, err := b.Params()
	if err != nil {
		return nil, err
	}
	return availability.NewRule(b.ID, b.ProviderID, p, b.Now)
}

// MustBuild is for fixtures that are known to be valid.
func (b *RuleBuilder) MustBuild() *availability.Rule {
	r, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return r
}

type BlockedSlotBuilder struct {
	ProviderID uuid.UUID
	Start      time.Time
	End        time.Time
	Reason     string
	Recurrence string
	Now        time.Time
}

func NewBlockedSlotBuilder() *BlockedSlotBuilder {
	start := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	return &BlockedSlotBuilder{
		ProviderID: uuid.New(),
		Start:      start,
		End:        start.Add(time.Hour),
		Reason:     "Lunch with supplier",
		Recurrence: "none",
		Now:        time.Now(),
	}
}

func (b *BlockedSlotBuilder) With(mutate func(*BlockedSlotBuilder)) *BlockedSlotBuilder {
	mutate(b)
	return b
}

func (b *BlockedSlotBuilder) BuildDomain() (*availability.BlockedSlot, error) {
	return availability.NewBlockedSlot(uuid.Nil, b.ProviderID, b.Start, b.End, b.Reason, b.Recurrence, b.Now)
}
