package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AvailabilityReadStore interface {
	RulesByProvider(ctx context.Context, providerID uuid.UUID) ([]*RuleView, error)
	BlockedByProvider(ctx context.Context, providerID uuid.UUID, from, to *time.Time) ([]*BlockedSlotView, error)
}

type AvailabilityQueries interface {
	ListRules(ctx context.Context, providerID uuid.UUID) ([]*RuleView, error)
	ListBlockedSlots(ctx context.Context, providerID uuid.UUID, from, to *time.Time) ([]*BlockedSlotView, error)
}

type availabilityQueriesImpl struct {
	repo AvailabilityReadStore
}

func NewAvailabilityQueries(repo AvailabilityReadStore) AvailabilityQueries {
	return &availabilityQueriesImpl{repo: repo}
}

// ListRules orders by weekday, then start time.
func (q *availabilityQueriesImpl) ListRules(ctx context.Context, providerID uuid.UUID) ([]*RuleView, error) {
	return q.repo.RulesByProvider(ctx, providerID)
}

// ListBlockedSlots orders by start. A non-nil window keeps only blocks
// overlapping [from, to).
func (q *availabilityQueriesImpl) ListBlockedSlots(ctx context.Context, providerID uuid.UUID, from, to *time.Time) ([]*BlockedSlotView, error) {
	if from != nil && to != nil && !to.After(*from) {
		return nil, ErrInvalidWindow
	}
	return q.repo.BlockedByProvider(ctx, providerID, from, to)
}
