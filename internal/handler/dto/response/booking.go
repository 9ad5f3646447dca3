package response

import (
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ProviderID         uuid.UUID  `json:"provider_id"`
	ServiceID          uuid.UUID  `json:"service_id"`
	ServiceName        string     `json:"service_name,omitempty"`
	CustomerName       string     `json:"customer_name"`
	CustomerEmail      string     `json:"customer_email"`
	CustomerPhone      string     `json:"customer_phone,omitempty"`
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	Duration           int        `json:"duration"`
	DepositCents       int64      `json:"deposit_cents"`
	Status             string     `json:"status"`
	DepositStatus      string     `json:"deposit_status"`
	DisputeStatus      string     `json:"dispute_status"`
	RefundCents        int64      `json:"refund_cents"`
	FeeCents           int64      `json:"fee_cents"`
	RefundedCents      int64      `json:"refunded_cents"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty"`
	DisputeReason      string     `json:"dispute_reason,omitempty"`
	ResolutionNotes    string     `json:"resolution_notes,omitempty"`
	DisputeResolvedAt  *time.Time `json:"dispute_resolved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func FromBooking(b *booking.Booking) *BookingResponse {
	w := b.Window()
	return &BookingResponse{
		ID:                 b.ID(),
		ProviderID:         b.ProviderID(),
		ServiceID:          b.ServiceID(),
		CustomerName:       b.Customer().Name(),
		CustomerEmail:      b.Customer().Email(),
		CustomerPhone:      b.Customer().Phone(),
		Start:              w.Start,
		End:                w.End,
		Duration:           b.Duration(),
		DepositCents:       b.DepositCents(),
		Status:             b.Status().String(),
		DepositStatus:      b.DepositStatus().String(),
		DisputeStatus:      b.DisputeStatus().String(),
		RefundCents:        b.RefundCents(),
		FeeCents:           b.FeeCents(),
		RefundedCents:      b.RefundedCents(),
		CancelledAt:        b.CancelledAt(),
		CancellationReason: b.CancellationReason(),
		CancelledBy:        b.CancelledBy().String(),
		DisputeReason:      b.DisputeReason(),
		ResolutionNotes:    b.ResolutionNotes(),
		DisputeResolvedAt:  b.DisputeResolvedAt(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
}

func FromBookingView(v *queries.BookingView) (*BookingResponse, error) {
	res := &BookingResponse{}
	if err := copier.Copy(res, v); err != nil {
		return nil, errs.Wrap(err, "map booking view")
	}
	res.Start = v.BookingDate
	res.End = v.BookingDate.Add(time.Duration(v.Duration) * time.Minute)
	return res, nil
}

// CreateBookingResponse carries the manage token the customer needs for
// later cancellation or disputes. It is not retrievable again.
type CreateBookingResponse struct {
	Booking     *BookingResponse `json:"booking"`
	ManageToken string           `json:"manage_token"`
}

type BookingListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	ServiceName   string    `json:"service_name"`
	CustomerName  string    `json:"customer_name"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Status        string    `json:"status"`
	DepositStatus string    `json:"deposit_status"`
	DisputeStatus string    `json:"dispute_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingListResponse struct {
	Items      []*BookingListItemResponse `json:"items"`
	NextCursor string                     `json:"next_cursor,omitempty"`
}

func FromBookingList(items []*queries.BookingListItem, next *queries.Cursor) *BookingListResponse {
	res := &BookingListResponse{Items: make([]*BookingListItemResponse, len(items))}
	for i, it := range items {
		res.Items[i] = &BookingListItemResponse{
			ID:            it.ID,
			ServiceName:   it.ServiceName,
			CustomerName:  it.CustomerName,
			Start:         it.BookingDate,
			End:           it.BookingDate.Add(time.Duration(it.Duration) * time.Minute),
			Status:        it.Status,
			DepositStatus: it.DepositStatus,
			DisputeStatus: it.DisputeStatus,
			CreatedAt:     it.CreatedAt,
		}
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res
}
