package readstore

import (
	"context"
	"time"

	"booking-engine/internal/domain/availability"
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
	ruleColumns = `id, provider_id, day_of_week, start_minute, end_minute,
		break_start_minute, break_end_minute, slot_duration, created_at, updated_at`

	selectRuleByIDSQL = `SELECT ` + ruleColumns + ` FROM availability_rules WHERE id = $1 AND provider_id = $2`

	selectRulesByProviderSQL = `SELECT ` + ruleColumns + ` FROM availability_rules
		WHERE provider_id = $1
		ORDER BY day_of_week, start_minute, id`

	blockedColumns = `id, provider_id, start_at, end_at, reason, recurrence, created_at`

	selectBlockedInRangeSQL = `SELECT ` + blockedColumns + ` FROM blocked_slots
		WHERE provider_id = $1
			AND tstzrange(start_at, end_at, '[)') && tstzrange($2, $3, '[)')
		ORDER BY start_at, id`

	selectBlockedByProviderSQL = `SELECT ` + blockedColumns + ` FROM blocked_slots
		WHERE provider_id = $1
			AND ($2::timestamptz IS NULL OR end_at > $2)
			AND ($3::timestamptz IS NULL OR start_at < $3)
		ORDER BY start_at, id`
)

type ruleRow struct {
	id, providerID uuid.UUID
	weekday        int16
	start, end     int16
	breakStart     pgtype.Int2
	breakEnd       pgtype.Int2
	slotDuration   int16
	createdAt      pgtype.Timestamptz
	updatedAt      pgtype.Timestamptz
}

func scanRule(row pgx.Row) (ruleRow, error) {
	var r ruleRow
	err := row.Scan(&r.id, &r.providerID, &r.weekday, &r.start, &r.end,
		&r.breakStart, &r.breakEnd, &r.slotDuration, &r.createdAt, &r.updatedAt)
	return r, err
}

func (r ruleRow) toDomain() (*availability.Rule, error) {
	start, err := availability.ClockTimeFromMinutes(int(r.start))
	if err != nil {
		return nil, errs.Wrap(err, "invalid stored rule start")
	}
	end, err := availability.ClockTimeFromMinutes(int(r.end))
	if err != nil {
		return nil, errs.Wrap(err, "invalid stored rule end")
	}
	var brk *availability.Break
	if r.breakStart.Valid && r.breakEnd.Valid {
		bs, err := availability.ClockTimeFromMinutes(int(r.breakStart.Int16))
		if err != nil {
			return nil, errs.Wrap(err, "invalid stored break start")
		}
		be, err := availability.ClockTimeFromMinutes(int(r.breakEnd.Int16))
		if err != nil {
			return nil, errs.Wrap(err, "invalid stored break end")
		}
		brk = &availability.Break{Start: bs, End: be}
	}
	return availability.ReconstructRule(r.id, r.providerID, time.Weekday(r.weekday), start, end, brk,
		int(r.slotDuration), pgconv.TimeFromPgtype(r.createdAt), pgconv.TimeFromPgtype(r.updatedAt)), nil
}

func (r ruleRow) toView() *queries.RuleView {
	v := &queries.RuleView{
		ID:           r.id,
		ProviderID:   r.providerID,
		Weekday:      int(r.weekday),
		StartTime:    formatMinutes(int(r.start)),
		EndTime:      formatMinutes(int(r.end)),
		SlotDuration: int(r.slotDuration),
		CreatedAt:    pgconv.TimeFromPgtype(r.createdAt),
		UpdatedAt:    pgconv.TimeFromPgtype(r.updatedAt),
	}
	if r.breakStart.Valid && r.breakEnd.Valid {
		bs, be := formatMinutes(int(r.breakStart.Int16)), formatMinutes(int(r.breakEnd.Int16))
		v.BreakStart, v.BreakEnd = &bs, &be
	}
	return v
}

func formatMinutes(m int) string {
	ct, err := availability.ClockTimeFromMinutes(m)
	if err != nil {
		return ""
	}
	return ct.String()
}

type blockedRow struct {
	id, providerID uuid.UUID
	start, end     pgtype.Timestamptz
	reason         string
	recurrence     string
	createdAt      pgtype.Timestamptz
}

func scanBlocked(row pgx.Row) (blockedRow, error) {
	var b blockedRow
	err := row.Scan(&b.id, &b.providerID, &b.start, &b.end, &b.reason, &b.recurrence, &b.createdAt)
	return b, err
}

func (b blockedRow) toDomain() *availability.BlockedSlot {
	return availability.ReconstructBlockedSlot(b.id, b.providerID,
		pgconv.TimeFromPgtype(b.start), pgconv.TimeFromPgtype(b.end),
		b.reason, availability.Recurrence(b.recurrence), pgconv.TimeFromPgtype(b.createdAt))
}

func (b blockedRow) toView() *queries.BlockedSlotView {
	return &queries.BlockedSlotView{
		ID:         b.id,
		ProviderID: b.providerID,
		Start:      pgconv.TimeFromPgtype(b.start),
		End:        pgconv.TimeFromPgtype(b.end),
		Reason:     b.reason,
		Recurrence: b.recurrence,
		CreatedAt:  pgconv.TimeFromPgtype(b.createdAt),
	}
}

// AvailabilityReadStore serves both the domain reads of the write side and
// the views of the query side.
type AvailabilityReadStore struct {
	db db.DBTX
}

func NewAvailabilityReadStore(db db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{db: db}
}

func (r *AvailabilityReadStore) FindRule(ctx context.Context, providerID, id uuid.UUID) (*availability.Rule, error) {
	row, err := scanRule(r.db.QueryRow(ctx, selectRuleByIDSQL, id, providerID))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("availability rule not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find availability rule", err)
	}
	return row.toDomain()
}

func (r *AvailabilityReadStore) FindRules(ctx context.Context, providerID uuid.UUID) ([]*availability.Rule, error) {
	rows, err := r.ruleRows(ctx, providerID)
	if err != nil {
		return nil, err
	}
	out := make([]*availability.Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func (r *AvailabilityReadStore) FindBlockedInRange(ctx context.Context, providerID uuid.UUID, window timerange.Range) ([]*availability.BlockedSlot, error) {
	rows, err := r.blockedRows(ctx, selectBlockedInRangeSQL, providerID,
		pgconv.TimeToPgtype(window.Start), pgconv.TimeToPgtype(window.End))
	if err != nil {
		return nil, err
	}
	out := make([]*availability.BlockedSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AvailabilityReadStore) RulesByProvider(ctx context.Context, providerID uuid.UUID) ([]*queries.RuleView, error) {
	rows, err := r.ruleRows(ctx, providerID)
	if err != nil {
		return nil, err
	}
	out := make([]*queries.RuleView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toView())
	}
	return out, nil
}

func (r *AvailabilityReadStore) BlockedByProvider(ctx context.Context, providerID uuid.UUID, from, to *time.Time) ([]*queries.BlockedSlotView, error) {
	rows, err := r.blockedRows(ctx, selectBlockedByProviderSQL, providerID,
		pgconv.TimePtrToPgtype(from), pgconv.TimePtrToPgtype(to))
	if err != nil {
		return nil, err
	}
	out := make([]*queries.BlockedSlotView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toView())
	}
	return out, nil
}

func (r *AvailabilityReadStore) ruleRows(ctx context.Context, providerID uuid.UUID) ([]ruleRow, error) {
	rows, err := r.db.Query(ctx, selectRulesByProviderSQL, providerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list availability rules", err)
	}
	defer rows.Close()

	var out []ruleRow
	for rows.Next() {
		row, err := scanRule(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan availability rule", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list availability rules", err)
	}
	return out, nil
}

func (r *AvailabilityReadStore) blockedRows(ctx context.Context, sql string, args ...any) ([]blockedRow, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list blocked slots", err)
	}
	defer rows.Close()

	var out []blockedRow
	for rows.Next() {
		row, err := scanBlocked(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan blocked slot", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list blocked slots", err)
	}
	return out, nil
}
