package request

import (
	"booking-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

// SlotQueryRequest needs either Duration or ServiceID.
type SlotQueryRequest struct {
	Date      string `form:"date" binding:"required"`
	Duration  int    `form:"duration"`
	ServiceID string `form:"serviceId" binding:"omitempty,uuid"`
}

func (r *SlotQueryRequest) ToQuery(slug string) queries.SlotQuery {
	q := queries.SlotQuery{
		ProviderSlug: slug,
		Date:         r.Date,
		Duration:     r.Duration,
	}
	if id, err := uuid.Parse(r.ServiceID); err == nil {
		q.ServiceID = &id
	}
	return q
}
