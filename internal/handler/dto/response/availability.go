package response

import (
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RuleResponse struct {
	ID           uuid.UUID `json:"id"`
	ProviderID   uuid.UUID `json:"provider_id"`
	Weekday      int       `json:"weekday"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	BreakStart   *string   `json:"break_start,omitempty"`
	BreakEnd     *string   `json:"break_end,omitempty"`
	SlotDuration int       `json:"slot_duration"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromRule(r *availability.Rule) *RuleResponse {
	res := &RuleResponse{
		ID:           r.ID(),
		ProviderID:   r.ProviderID(),
		Weekday:      int(r.Weekday()),
		StartTime:    r.Start().String(),
		EndTime:      r.End().String(),
		SlotDuration: r.SlotDuration(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
	if b := r.Break(); b != nil {
		start, end := b.Start.String(), b.End.String()
		res.BreakStart, res.BreakEnd = &start, &end
	}
	return res
}

func FromRuleViews(views []*queries.RuleView) ([]*RuleResponse, error) {
	res := make([]*RuleResponse, len(views))
	for i, v := range views {
		res[i] = &RuleResponse{}
		if err := copier.Copy(res[i], v); err != nil {
			return nil, errs.Wrap(err, "map rule view")
		}
	}
	return res, nil
}

type BlockedSlotResponse struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Reason     string    `json:"reason,omitempty"`
	Recurrence string    `json:"recurrence"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromBlockedSlot(b *availability.BlockedSlot) *BlockedSlotResponse {
	return &BlockedSlotResponse{
		ID:         b.ID(),
		ProviderID: b.ProviderID(),
		Start:      b.Start(),
		End:        b.End(),
		Reason:     b.Reason().String(),
		Recurrence: b.Recurrence().String(),
		CreatedAt:  b.CreatedAt(),
	}
}

func FromBlockedSlotViews(views []*queries.BlockedSlotView) ([]*BlockedSlotResponse, error) {
	res := make([]*BlockedSlotResponse, len(views))
	for i, v := range views {
		res[i] = &BlockedSlotResponse{}
		if err := copier.Copy(res[i], v); err != nil {
			return nil, errs.Wrap(err, "map blocked slot view")
		}
	}
	return res, nil
}
