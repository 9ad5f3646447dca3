package queries

import (
	"context"
	"time"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidWindow = errs.Validation("window end must be after start")
	ErrInvalidStatus = errs.Validation("unknown booking status")
)

type BookingFilters struct {
	From   *time.Time
	To     *time.Time
	Status *string
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByProviderFirstPage(ctx context.Context, providerID uuid.UUID, filters BookingFilters, limit int32) ([]*BookingListItem, error)
	FindByProviderKeyset(ctx context.Context, providerID uuid.UUID, filters BookingFilters, lastStart time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID, by actor.Actor) (*BookingView, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID, filters BookingFilters, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
}

type bookingQueriesImpl struct {
	repo BookingReadStore
}

func NewBookingQueries(repo BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

// GetByID hides bookings the actor may not see behind not found.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID, by actor.Actor) (*BookingView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, booking.ErrBookingNotFound)
	}
	switch by.Role {
	case actor.RoleAdmin:
	case actor.RoleProvider:
		if by.ID != v.ProviderID.String() {
			return nil, booking.ErrBookingNotFound
		}
	case actor.RoleCustomer:
		if by.ID != v.ID.String() {
			return nil, booking.ErrBookingNotFound
		}
	default:
		return nil, booking.ErrBookingNotFound
	}
	return v, nil
}

// ListForProvider pages by (booking date, id) ascending.
func (q *bookingQueriesImpl) ListForProvider(ctx context.Context, providerID uuid.UUID, filters BookingFilters, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	if filters.From != nil && filters.To != nil && !filters.To.After(*filters.From) {
		return nil, nil, ErrInvalidWindow
	}
	if filters.Status != nil && !booking.Status(*filters.Status).IsValid() {
		return nil, nil, ErrInvalidStatus
	}

	limit = ValidateLimit(limit)
	var rows []*BookingListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.repo.FindByProviderFirstPage(ctx, providerID, filters, int32(limit+1))
	} else {
		lastStart, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.repo.FindByProviderKeyset(ctx, providerID, filters, lastStart, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.BookingDate, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}
