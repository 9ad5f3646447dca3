package repository

import (
	"context"
	"time"

	"booking-engine/internal/infra"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/pgconv"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	selectIdempotencyKeySQL = `
		SELECT request_hash, booking_id, created_at, expires_at
		FROM idempotency_keys
		WHERE provider_id = $1 AND idem_key = $2 AND expires_at > $3`

	// An expired row is taken over in place; a live one leaves zero rows affected.
	upsertIdempotencyKeySQL = `
		INSERT INTO idempotency_keys (provider_id, idem_key, request_hash, booking_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider_id, idem_key) DO UPDATE
		SET request_hash = EXCLUDED.request_hash,
			booking_id = EXCLUDED.booking_id,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= EXCLUDED.created_at`
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

func (r *IdempotencyRepository) Find(ctx context.Context, tx db.DBTX, providerID uuid.UUID, key string, now time.Time) (*shared.IdempotencyRecord, error) {
	rec := shared.IdempotencyRecord{ProviderID: providerID, Key: key}
	var createdAt, expiresAt pgtype.Timestamptz
	err := tx.QueryRow(ctx, selectIdempotencyKeySQL, providerID, key, pgconv.TimeToPgtype(now)).
		Scan(&rec.RequestHash, &rec.BookingID, &createdAt, &expiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to look up idempotency key", err)
	}
	rec.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	rec.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	return &rec, nil
}

func (r *IdempotencyRepository) Save(ctx context.Context, tx db.DBTX, rec shared.IdempotencyRecord) error {
	tag, err := tx.Exec(ctx, upsertIdempotencyKeySQL,
		rec.ProviderID,
		rec.Key,
		rec.RequestHash,
		rec.BookingID,
		pgconv.TimeToPgtype(rec.CreatedAt),
		pgconv.TimeToPgtype(rec.ExpiresAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key in use", nil, infra.KindConflict)
	}
	return nil
}
