package response

import (
	"time"

	"booking-engine/internal/domain/slot"
)

type SlotResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

func FromSlots(slots []slot.TimeSlot) []SlotResponse {
	res := make([]SlotResponse, len(slots))
	for i, s := range slots {
		res[i] = SlotResponse{Start: s.Start, End: s.End, Available: s.Available}
	}
	return res
}
