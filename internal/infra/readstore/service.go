package readstore

import (
	"context"
	"encoding/json"

	"booking-engine/internal/domain/policy"
	"booking-engine/internal/domain/service"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectServiceSQL = `
	SELECT id, provider_id, name, duration_minutes, deposit_kind, deposit_amount_cents,
		deposit_percent, full_price_cents, cancellation_policy, is_active, created_at
	FROM services
	WHERE id = $1 AND provider_id = $2`

type ServiceReadStore struct {
	db db.DBTX
}

func NewServiceReadStore(db db.DBTX) *ServiceReadStore {
	return &ServiceReadStore{db: db}
}

// FindByID only sees services of providerID.
func (r *ServiceReadStore) FindByID(ctx context.Context, providerID, id uuid.UUID) (*service.Service, error) {
	var (
		sid, pid    uuid.UUID
		name        string
		duration    int32
		kind        string
		amountCents int64
		percent     pgtype.Numeric
		fullPrice   int64
		rawPolicy   []byte
		isActive    bool
		createdAt   pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, selectServiceSQL, id, providerID).Scan(
		&sid, &pid, &name, &duration, &kind, &amountCents,
		&percent, &fullPrice, &rawPolicy, &isActive, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("service not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service", err)
	}

	pct, err := pgconv.DecimalFromNumeric(percent)
	if err != nil {
		return nil, errs.Wrap(err, "invalid deposit percent")
	}
	var pol policy.Policy
	if err := json.Unmarshal(rawPolicy, &pol); err != nil {
		return nil, errs.Wrap(err, "failed to decode cancellation policy")
	}

	deposit := service.Deposit{
		Kind:           service.DepositKind(kind),
		AmountCents:    amountCents,
		Percent:        pct,
		FullPriceCents: fullPrice,
	}
	return service.ReconstructService(sid, pid, name, int(duration), deposit, pol, isActive, pgconv.TimeFromPgtype(createdAt)), nil
}
