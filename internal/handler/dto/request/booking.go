package request

import (
	"time"

	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/patch"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var ErrInvalidTimestamp = errs.Validation("from and to must be RFC 3339 timestamps")

type CreateBookingRequest struct {
	ServiceID     uuid.UUID `json:"service_id" binding:"required"`
	Start         time.Time `json:"start" binding:"required"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerEmail string    `json:"customer_email" binding:"required"`
	CustomerPhone string    `json:"customer_phone"`
}

func (r *CreateBookingRequest) ToCommand(slug string) (commands.CreateBookingRequest, error) {
	var cmd commands.CreateBookingRequest
	if err := copier.Copy(&cmd, r); err != nil {
		return commands.CreateBookingRequest{}, errs.Wrap(err, "map create booking request")
	}
	cmd.ProviderSlug = slug
	return cmd, nil
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type OpenDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ResolveDisputeRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=resolved_customer resolved_provider"`
	Notes   string `json:"notes"`
}

type ListBookingsRequest struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Status string `form:"status"`
	Cursor string `form:"cursor"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1"`
}

func (r *ListBookingsRequest) ToFilters() (queries.BookingFilters, error) {
	from, to, err := parseWindow(r.From, r.To)
	if err != nil {
		return queries.BookingFilters{}, err
	}
	f := queries.BookingFilters{From: from, To: to}
	if r.Status != "" {
		f.Status = &r.Status
	}
	return f, nil
}

func (r *ListBookingsRequest) GetLimit() int {
	return patch.Coalesce(r.Limit, queries.DefaultListLimit)
}

func (r *ListBookingsRequest) GetCursor() *queries.Cursor {
	if r.Cursor == "" {
		return nil
	}
	return &queries.Cursor{After: r.Cursor}
}

func parseWindow(rawFrom, rawTo string) (from, to *time.Time, err error) {
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, perr := time.Parse(time.RFC3339, s)
		if perr != nil {
			return nil, ErrInvalidTimestamp
		}
		return &t, nil
	}
	if from, err = parse(rawFrom); err != nil {
		return nil, nil, err
	}
	if to, err = parse(rawTo); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
