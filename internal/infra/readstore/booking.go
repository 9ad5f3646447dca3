package readstore

import (
	"context"
	"time"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/policy"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/pgconv"
	"booking-engine/internal/pkg/timerange"
	"booking-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	bookingColumns = `b.id, b.provider_id, b.service_id, b.customer_name, b.customer_email, b.customer_phone,
		b.start_at, b.duration_minutes, b.deposit_cents, b.policy_snapshot,
		b.status, b.deposit_status, b.dispute_status, b.payment_ref,
		b.cancelled_at, b.cancellation_reason, b.cancelled_by, b.refund_cents, b.fee_cents, b.refunded_cents,
		b.confirmed_at, b.completed_at, b.no_show_at,
		b.dispute_reason, b.dispute_opened_at, b.resolution_notes, b.dispute_resolved_at,
		b.created_at, b.updated_at`

	selectBookingForUpdateSQL = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1 FOR UPDATE`

	selectBookingByPaymentRefSQL = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.payment_ref = $1 FOR UPDATE`

	selectBookingViewSQL = `SELECT ` + bookingColumns + `, s.name
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.id = $1`

	// Windows are derived from start_at and end_at, which the writer keeps in step.
	selectOverlappingBookingsSQL = `
		SELECT start_at, end_at
		FROM bookings
		WHERE provider_id = $1
			AND tstzrange(start_at, end_at, '[)') && tstzrange($2, $3, '[)')
			AND (status IN ('confirmed', 'completed', 'no_show') OR ($4 AND status = 'pending'))
		ORDER BY start_at`

	bookingListColumns = `b.id, s.name, b.customer_name, b.start_at, b.duration_minutes,
		b.status, b.deposit_status, b.dispute_status, b.created_at`

	bookingListFilter = `
		WHERE b.provider_id = $1
			AND ($2::timestamptz IS NULL OR b.start_at >= $2)
			AND ($3::timestamptz IS NULL OR b.start_at < $3)
			AND ($4::text IS NULL OR b.status = $4)`

	selectBookingsFirstPageSQL = `SELECT ` + bookingListColumns + `
		FROM bookings b
		JOIN services s ON s.id = b.service_id` + bookingListFilter + `
		ORDER BY b.start_at, b.id
		LIMIT $5`

	selectBookingsKeysetSQL = `SELECT ` + bookingListColumns + `
		FROM bookings b
		JOIN services s ON s.id = b.service_id` + bookingListFilter + `
			AND (b.start_at, b.id) > ($5, $6)
		ORDER BY b.start_at, b.id
		LIMIT $7`
)

type bookingRow struct {
	rec         booking.Record
	snapshot    []byte
	status      string
	deposit     string
	dispute     string
	paymentRef  pgtype.Text
	cancelledBy string
	duration    int32
	start       pgtype.Timestamptz
	cancelledAt pgtype.Timestamptz
	confirmedAt pgtype.Timestamptz
	completedAt pgtype.Timestamptz
	noShowAt    pgtype.Timestamptz
	openedAt    pgtype.Timestamptz
	resolvedAt  pgtype.Timestamptz
	createdAt   pgtype.Timestamptz
	updatedAt   pgtype.Timestamptz
}

func (b *bookingRow) dest() []any {
	return []any{
		&b.rec.ID, &b.rec.ProviderID, &b.rec.ServiceID, &b.rec.CustomerName, &b.rec.CustomerEmail, &b.rec.CustomerPhone,
		&b.start, &b.duration, &b.rec.DepositCents, &b.snapshot,
		&b.status, &b.deposit, &b.dispute, &b.paymentRef,
		&b.cancelledAt, &b.rec.CancellationReason, &b.cancelledBy, &b.rec.RefundCents, &b.rec.FeeCents, &b.rec.RefundedCents,
		&b.confirmedAt, &b.completedAt, &b.noShowAt,
		&b.rec.DisputeReason, &b.openedAt, &b.rec.ResolutionNotes, &b.resolvedAt,
		&b.createdAt, &b.updatedAt,
	}
}

func (b *bookingRow) record() (booking.Record, error) {
	snap, err := policy.ParseSnapshot(b.snapshot)
	if err != nil {
		return booking.Record{}, errs.Wrap(err, "failed to read policy snapshot of booking "+b.rec.ID.String())
	}
	r := b.rec
	r.Snapshot = snap
	r.Start = pgconv.TimeFromPgtype(b.start)
	r.Duration = int(b.duration)
	r.Status = booking.Status(b.status)
	r.DepositStatus = booking.DepositStatus(b.deposit)
	r.DisputeStatus = booking.DisputeStatus(b.dispute)
	r.PaymentRef = pgconv.StringFromPgtype(b.paymentRef)
	r.CancelledBy = actor.Role(b.cancelledBy)
	r.CancelledAt = pgconv.TimePtrFromPgtype(b.cancelledAt)
	r.ConfirmedAt = pgconv.TimePtrFromPgtype(b.confirmedAt)
	r.CompletedAt = pgconv.TimePtrFromPgtype(b.completedAt)
	r.NoShowAt = pgconv.TimePtrFromPgtype(b.noShowAt)
	r.DisputeOpenedAt = pgconv.TimePtrFromPgtype(b.openedAt)
	r.DisputeResolvedAt = pgconv.TimePtrFromPgtype(b.resolvedAt)
	r.CreatedAt = pgconv.TimeFromPgtype(b.createdAt)
	r.UpdatedAt = pgconv.TimeFromPgtype(b.updatedAt)
	return r, nil
}

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

// FindForUpdate locks the row until the surrounding transaction ends.
func (r *BookingReadStore) FindForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.findOne(ctx, selectBookingForUpdateSQL, id)
}

func (r *BookingReadStore) FindByPaymentRef(ctx context.Context, paymentRef string) (*booking.Booking, error) {
	return r.findOne(ctx, selectBookingByPaymentRefSQL, paymentRef)
}

func (r *BookingReadStore) findOne(ctx context.Context, sql string, arg any) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.QueryRow(ctx, sql, arg).Scan(row.dest()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return booking.Reconstruct(rec), nil
}

func (r *BookingReadStore) FindOverlapping(ctx context.Context, providerID uuid.UUID, window timerange.Range, pendingOccupies bool) ([]timerange.Range, error) {
	rows, err := r.db.Query(ctx, selectOverlappingBookingsSQL,
		providerID, pgconv.TimeToPgtype(window.Start), pgconv.TimeToPgtype(window.End), pendingOccupies)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find overlapping bookings", err)
	}
	defer rows.Close()

	var out []timerange.Range
	for rows.Next() {
		var start, end pgtype.Timestamptz
		if err := rows.Scan(&start, &end); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking window", err)
		}
		out = append(out, timerange.Range{Start: pgconv.TimeFromPgtype(start), End: pgconv.TimeFromPgtype(end)})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to find overlapping bookings", err)
	}
	return out, nil
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var (
		row         bookingRow
		serviceName string
	)
	dest := append(row.dest(), &serviceName)
	if err := r.db.QueryRow(ctx, selectBookingViewSQL, id).Scan(dest...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return toBookingView(rec, serviceName), nil
}

func (r *BookingReadStore) FindByProviderFirstPage(ctx context.Context, providerID uuid.UUID, filters queries.BookingFilters, limit int32) ([]*queries.BookingListItem, error) {
	return r.list(ctx, selectBookingsFirstPageSQL,
		providerID,
		pgconv.TimePtrToPgtype(filters.From),
		pgconv.TimePtrToPgtype(filters.To),
		statusParam(filters.Status),
		limit,
	)
}

func (r *BookingReadStore) FindByProviderKeyset(ctx context.Context, providerID uuid.UUID, filters queries.BookingFilters, lastStart time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	return r.list(ctx, selectBookingsKeysetSQL,
		providerID,
		pgconv.TimePtrToPgtype(filters.From),
		pgconv.TimePtrToPgtype(filters.To),
		statusParam(filters.Status),
		pgconv.TimeToPgtype(lastStart),
		lastID,
		limit,
	)
}

func (r *BookingReadStore) list(ctx context.Context, sql string, args ...any) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.BookingListItem, error) {
		var (
			it        queries.BookingListItem
			duration  int32
			start     pgtype.Timestamptz
			createdAt pgtype.Timestamptz
		)
		if err := row.Scan(&it.ID, &it.ServiceName, &it.CustomerName, &start, &duration,
			&it.Status, &it.DepositStatus, &it.DisputeStatus, &createdAt); err != nil {
			return nil, err
		}
		it.BookingDate = pgconv.TimeFromPgtype(start)
		it.Duration = int(duration)
		it.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		return &it, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan bookings", err)
	}
	return items, nil
}

func statusParam(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func toBookingView(r booking.Record, serviceName string) *queries.BookingView {
	return &queries.BookingView{
		ID:                 r.ID,
		ProviderID:         r.ProviderID,
		ServiceID:          r.ServiceID,
		ServiceName:        serviceName,
		CustomerName:       r.CustomerName,
		CustomerEmail:      r.CustomerEmail,
		CustomerPhone:      r.CustomerPhone,
		BookingDate:        r.Start,
		Duration:           r.Duration,
		DepositCents:       r.DepositCents,
		Status:             r.Status.String(),
		DepositStatus:      r.DepositStatus.String(),
		DisputeStatus:      r.DisputeStatus.String(),
		RefundCents:        r.RefundCents,
		FeeCents:           r.FeeCents,
		RefundedCents:      r.RefundedCents,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		CancelledBy:        r.CancelledBy.String(),
		DisputeReason:      r.DisputeReason,
		ResolutionNotes:    r.ResolutionNotes,
		DisputeResolvedAt:  r.DisputeResolvedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
