package request

import (
	"time"

	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/commands"

	"github.com/jinzhu/copier"
)

// Times of day are "HH:MM" in the provider's time zone.
type CreateRuleRequest struct {
	Weekday      *int    `json:"weekday" binding:"required"`
	StartTime    string  `json:"start_time" binding:"required"`
	EndTime      string  `json:"end_time" binding:"required"`
	BreakStart   *string `json:"break_start"`
	BreakEnd     *string `json:"break_end"`
	SlotDuration int     `json:"slot_duration" binding:"required"`
}

func (r *CreateRuleRequest) ToCommand() commands.CreateRuleRequest {
	return commands.CreateRuleRequest{
		Weekday:      *r.Weekday,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		BreakStart:   r.BreakStart,
		BreakEnd:     r.BreakEnd,
		SlotDuration: r.SlotDuration,
	}
}

type UpdateRuleRequest struct {
	Weekday      *int    `json:"weekday"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	BreakStart   *string `json:"break_start"`
	BreakEnd     *string `json:"break_end"`
	ClearBreak   bool    `json:"clear_break"`
	SlotDuration *int    `json:"slot_duration"`
}

func (r *UpdateRuleRequest) ToCommand() (commands.UpdateRuleRequest, error) {
	var cmd commands.UpdateRuleRequest
	if err := copier.Copy(&cmd, r); err != nil {
		return commands.UpdateRuleRequest{}, errs.Wrap(err, "map update rule request")
	}
	return cmd, nil
}

type CreateBlockedSlotRequest struct {
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	Reason     string    `json:"reason"`
	Recurrence string    `json:"recurrence"`
}

func (r *CreateBlockedSlotRequest) ToCommand() (commands.CreateBlockedSlotRequest, error) {
	var cmd commands.CreateBlockedSlotRequest
	if err := copier.Copy(&cmd, r); err != nil {
		return commands.CreateBlockedSlotRequest{}, errs.Wrap(err, "map blocked slot request")
	}
	return cmd, nil
}

type ListBlockedSlotsRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func (r *ListBlockedSlotsRequest) Window() (from, to *time.Time, err error) {
	return parseWindow(r.From, r.To)
}
