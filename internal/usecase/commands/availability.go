package commands

import (
	"context"
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/provider"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type AvailabilityCommands interface {
	CreateRule(ctx context.Context, providerID uuid.UUID, req CreateRuleRequest) (*availability.Rule, error)
	UpdateRule(ctx context.Context, providerID, ruleID uuid.UUID, req UpdateRuleRequest) (*availability.Rule, error)
	DeleteRule(ctx context.Context, providerID, ruleID uuid.UUID) error
	CreateBlockedSlot(ctx context.Context, providerID uuid.UUID, req CreateBlockedSlotRequest) (*availability.BlockedSlot, error)
	DeleteBlockedSlot(ctx context.Context, providerID, blockedID uuid.UUID) error
}

type CreateRuleRequest struct {
	Weekday      int
	StartTime    string
	EndTime      string
	BreakStart   *string
	BreakEnd     *string
	SlotDuration int
}

// UpdateRuleRequest leaves nil fields unchanged. ClearBreak removes the break.
type UpdateRuleRequest struct {
	Weekday      *int
	StartTime    *string
	EndTime      *string
	BreakStart   *string
	BreakEnd     *string
	ClearBreak   bool
	SlotDuration *int
}

type CreateBlockedSlotRequest struct {
	Start      time.Time
	End        time.Time
	Reason     string
	Recurrence string
}

type availabilityUseCaseImpl struct {
	uow         shared.UnitOfWork
	clock       clock.Clock
	invalidator scheduleInvalidator
}

func NewAvailabilityUseCase(uow shared.UnitOfWork, cache shared.SlotCache, clk clock.Clock, cfg config.CacheConfig) AvailabilityCommands {
	return &availabilityUseCaseImpl{
		uow:         uow,
		clock:       clk,
		invalidator: newScheduleInvalidator(cache, cfg),
	}
}

func (uc *availabilityUseCaseImpl) CreateRule(ctx context.Context, providerID uuid.UUID, req CreateRuleRequest) (*availability.Rule, error) {
	params, err := req.toParams()
	if err != nil {
		return nil, err
	}

	var created *availability.Rule
	slug, err := uc.mutate(ctx, providerID, func(ctx context.Context, tx shared.Tx) error {
		rule, derr := availability.NewRule(uuid.New(), providerID, params, uc.clock.Now())
		if derr != nil {
			return derr
		}
		if derr = tx.Rules().Create(ctx, tx.DB(), rule); derr != nil {
			return derr
		}
		created = rule
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidator.invalidate(ctx, slug)
	return created, nil
}

func (uc *availabilityUseCaseImpl) UpdateRule(ctx context.Context, providerID, ruleID uuid.UUID, req UpdateRuleRequest) (*availability.Rule, error) {
	patch, err := req.toPatch()
	if err != nil {
		return nil, err
	}

	var updated *availability.Rule
	slug, err := uc.mutate(ctx, providerID, func(ctx context.Context, tx shared.Tx) error {
		current, derr := tx.Reads().RuleByID(ctx, providerID, ruleID)
		if derr != nil {
			return notFoundAs(derr, ErrRuleNotFound)
		}
		next, derr := current.Apply(patch, uc.clock.Now())
		if derr != nil {
			return derr
		}
		if derr = tx.Rules().Update(ctx, tx.DB(), next); derr != nil {
			return notFoundAs(derr, ErrRuleNotFound)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidator.invalidate(ctx, slug)
	return updated, nil
}

func (uc *availabilityUseCaseImpl) DeleteRule(ctx context.Context, providerID, ruleID uuid.UUID) error {
	slug, err := uc.mutate(ctx, providerID, func(ctx context.Context, tx shared.Tx) error {
		return notFoundAs(tx.Rules().Delete(ctx, tx.DB(), providerID, ruleID), ErrRuleNotFound)
	})
	if err != nil {
		return err
	}
	uc.invalidator.invalidate(ctx, slug)
	return nil
}

func (uc *availabilityUseCaseImpl) CreateBlockedSlot(ctx context.Context, providerID uuid.UUID, req CreateBlockedSlotRequest) (*availability.BlockedSlot, error) {
	blocked, err := availability.NewBlockedSlot(uuid.New(), providerID, req.Start, req.End, req.Reason, req.Recurrence, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	slug, err := uc.mutate(ctx, providerID, func(ctx context.Context, tx shared.Tx) error {
		return tx.BlockedSlots().Create(ctx, tx.DB(), blocked)
	})
	if err != nil {
		return nil, err
	}
	uc.invalidator.invalidate(ctx, slug)
	return blocked, nil
}

func (uc *availabilityUseCaseImpl) DeleteBlockedSlot(ctx context.Context, providerID, blockedID uuid.UUID) error {
	slug, err := uc.mutate(ctx, providerID, func(ctx context.Context, tx shared.Tx) error {
		return notFoundAs(tx.BlockedSlots().Delete(ctx, tx.DB(), providerID, blockedID), ErrBlockedSlotNotFound)
	})
	if err != nil {
		return err
	}
	uc.invalidator.invalidate(ctx, slug)
	return nil
}

// mutate runs fn in a transaction after resolving the owning provider and
// returns the provider's slug for cache invalidation.
func (uc *availabilityUseCaseImpl) mutate(ctx context.Context, providerID uuid.UUID, fn func(ctx context.Context, tx shared.Tx) error) (string, error) {
	var p *provider.Provider
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		found, derr := tx.Reads().ProviderByID(ctx, providerID)
		if derr != nil {
			return notFoundAs(derr, ErrProviderNotFound)
		}
		p = found
		return fn(ctx, tx)
	})
	if err != nil {
		return "", err
	}
	return p.Slug, nil
}

func (r CreateRuleRequest) toParams() (availability.RuleParams, error) {
	start, err := availability.ParseClockTime(r.StartTime)
	if err != nil {
		return availability.RuleParams{}, err
	}
	end, err := availability.ParseClockTime(r.EndTime)
	if err != nil {
		return availability.RuleParams{}, err
	}
	breakStart, err := parseOptionalClock(r.BreakStart)
	if err != nil {
		return availability.RuleParams{}, err
	}
	breakEnd, err := parseOptionalClock(r.BreakEnd)
	if err != nil {
		return availability.RuleParams{}, err
	}
	return availability.RuleParams{
		Weekday:      r.Weekday,
		Start:        start,
		End:          end,
		BreakStart:   breakStart,
		BreakEnd:     breakEnd,
		SlotDuration: r.SlotDuration,
	}, nil
}

func (r UpdateRuleRequest) toPatch() (availability.RulePatch, error) {
	var patch availability.RulePatch
	var err error
	patch.Weekday = r.Weekday
	patch.SlotDuration = r.SlotDuration
	patch.ClearBreak = r.ClearBreak
	if patch.Start, err = parseOptionalClock(r.StartTime); err != nil {
		return patch, err
	}
	if patch.End, err = parseOptionalClock(r.EndTime); err != nil {
		return patch, err
	}
	if patch.BreakStart, err = parseOptionalClock(r.BreakStart); err != nil {
		return patch, err
	}
	if patch.BreakEnd, err = parseOptionalClock(r.BreakEnd); err != nil {
		return patch, err
	}
	return patch, nil
}

func parseOptionalClock(s *string) (*availability.ClockTime, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	c, err := availability.ParseClockTime(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
