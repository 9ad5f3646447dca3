package repository

import (
	"context"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/pgconv"
)

const (
	insertBookingSQL = `
		INSERT INTO bookings
			(id, provider_id, service_id, customer_name, customer_email, customer_phone,
			 start_at, end_at, duration_minutes, deposit_cents, policy_snapshot,
			 status, deposit_status, dispute_status, occupies_slot, payment_ref,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	updateBookingSQL = `
		UPDATE bookings
		SET status = $2,
			deposit_status = $3,
			dispute_status = $4,
			occupies_slot = $5,
			payment_ref = $6,
			refund_cents = $7,
			fee_cents = $8,
			cancelled_at = $9,
			cancellation_reason = $10,
			cancelled_by = $11,
			confirmed_at = $12,
			completed_at = $13,
			no_show_at = $14,
			dispute_reason = $15,
			dispute_opened_at = $16,
			resolution_notes = $17,
			dispute_resolved_at = $18,
			updated_at = $19,
			refunded_cents = $20
		WHERE id = $1`
)

// BookingRepository writes bookings. The bookings_no_overlap exclusion
// constraint rejects a second occupying row for the same window; that
// surfaces as a KindConflict repository error.
type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking, occupies bool) error {
	rec := b.Record()
	snapshot, err := rec.Snapshot.Marshal()
	if err != nil {
		return errs.Wrap(err, "failed to encode policy snapshot")
	}
	window := b.Window()

	_, err = tx.Exec(ctx, insertBookingSQL,
		rec.ID,
		rec.ProviderID,
		rec.ServiceID,
		rec.CustomerName,
		rec.CustomerEmail,
		rec.CustomerPhone,
		pgconv.TimeToPgtype(window.Start),
		pgconv.TimeToPgtype(window.End),
		int32(rec.Duration),
		rec.DepositCents,
		snapshot,
		rec.Status.String(),
		rec.DepositStatus.String(),
		rec.DisputeStatus.String(),
		occupies,
		pgconv.NullableText(rec.PaymentRef),
		pgconv.TimeToPgtype(rec.CreatedAt),
		pgconv.TimeToPgtype(rec.UpdatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, tx db.DBTX, b *booking.Booking, occupies bool) error {
	rec := b.Record()
	tag, err := tx.Exec(ctx, updateBookingSQL,
		rec.ID,
		rec.Status.String(),
		rec.DepositStatus.String(),
		rec.DisputeStatus.String(),
		occupies,
		pgconv.NullableText(rec.PaymentRef),
		rec.RefundCents,
		rec.FeeCents,
		pgconv.TimePtrToPgtype(rec.CancelledAt),
		rec.CancellationReason,
		rec.CancelledBy.String(),
		pgconv.TimePtrToPgtype(rec.ConfirmedAt),
		pgconv.TimePtrToPgtype(rec.CompletedAt),
		pgconv.TimePtrToPgtype(rec.NoShowAt),
		rec.DisputeReason,
		pgconv.TimePtrToPgtype(rec.DisputeOpenedAt),
		rec.ResolutionNotes,
		pgconv.TimePtrToPgtype(rec.DisputeResolvedAt),
		pgconv.TimeToPgtype(rec.UpdatedAt),
		rec.RefundedCents,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}
