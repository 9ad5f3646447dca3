package repository

import (
	"context"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	insertRuleSQL = `
		INSERT INTO availability_rules
			(id, provider_id, day_of_week, start_minute, end_minute,
			 break_start_minute, break_end_minute, slot_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateRuleSQL = `
		UPDATE availability_rules
		SET day_of_week = $3,
			start_minute = $4,
			end_minute = $5,
			break_start_minute = $6,
			break_end_minute = $7,
			slot_duration = $8,
			updated_at = $9
		WHERE id = $1 AND provider_id = $2`

	deleteRuleSQL = `DELETE FROM availability_rules WHERE id = $1 AND provider_id = $2`

	insertBlockedSlotSQL = `
		INSERT INTO blocked_slots (id, provider_id, start_at, end_at, reason, recurrence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	deleteBlockedSlotSQL = `DELETE FROM blocked_slots WHERE id = $1 AND provider_id = $2`
)

type RuleRepository struct{}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{}
}

func (r *RuleRepository) Create(ctx context.Context, tx db.DBTX, rule *availability.Rule) error {
	bs, be := breakColumns(rule)
	_, err := tx.Exec(ctx, insertRuleSQL,
		rule.ID(),
		rule.ProviderID(),
		int16(rule.Weekday()),
		int16(rule.Start().Minutes()),
		int16(rule.End().Minutes()),
		bs,
		be,
		int16(rule.SlotDuration()),
		pgconv.TimeToPgtype(rule.CreatedAt()),
		pgconv.TimeToPgtype(rule.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create availability rule", err)
	}
	return nil
}

func (r *RuleRepository) Update(ctx context.Context, tx db.DBTX, rule *availability.Rule) error {
	bs, be := breakColumns(rule)
	tag, err := tx.Exec(ctx, updateRuleSQL,
		rule.ID(),
		rule.ProviderID(),
		int16(rule.Weekday()),
		int16(rule.Start().Minutes()),
		int16(rule.End().Minutes()),
		bs,
		be,
		int16(rule.SlotDuration()),
		pgconv.TimeToPgtype(rule.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update availability rule", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("availability rule not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *RuleRepository) Delete(ctx context.Context, tx db.DBTX, providerID, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, deleteRuleSQL, id, providerID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete availability rule", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("availability rule not found", nil, infra.KindNotFound)
	}
	return nil
}

func breakColumns(rule *availability.Rule) (pgtype.Int2, pgtype.Int2) {
	brk := rule.Break()
	if brk == nil {
		return pgtype.Int2{}, pgtype.Int2{}
	}
	bs, be := brk.Start.Minutes(), brk.End.Minutes()
	return pgconv.IntPtrToInt2(&bs), pgconv.IntPtrToInt2(&be)
}

type BlockedSlotRepository struct{}

func NewBlockedSlotRepository() *BlockedSlotRepository {
	return &BlockedSlotRepository{}
}

func (r *BlockedSlotRepository) Create(ctx context.Context, tx db.DBTX, b *availability.BlockedSlot) error {
	_, err := tx.Exec(ctx, insertBlockedSlotSQL,
		b.ID(),
		b.ProviderID(),
		pgconv.TimeToPgtype(b.Start()),
		pgconv.TimeToPgtype(b.End()),
		b.Reason().String(),
		b.Recurrence().String(),
		pgconv.TimeToPgtype(b.CreatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create blocked slot", err)
	}
	return nil
}

func (r *BlockedSlotRepository) Delete(ctx context.Context, tx db.DBTX, providerID, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, deleteBlockedSlotSQL, id, providerID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete blocked slot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("blocked slot not found", nil, infra.KindNotFound)
	}
	return nil
}
