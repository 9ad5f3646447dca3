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

// claimLease hides a claimed message from other relays while it is delivered.
const claimLease = time.Minute

const (
	insertOutboxSQL = `
		INSERT INTO outbox_events (id, kind, topic, aggregate_id, payload, available_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`

	claimOutboxSQL = `
		UPDATE outbox_events
		SET available_at = $2
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE published_at IS NULL
				AND dead_at IS NULL
				AND available_at <= $1
			ORDER BY available_at, created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, topic, aggregate_id, payload, attempts, available_at, created_at`

	markOutboxPublishedSQL = `UPDATE outbox_events SET published_at = $2 WHERE id = $1`

	markOutboxFailedSQL = `
		UPDATE outbox_events
		SET attempts = attempts + 1,
			last_error = $2,
			available_at = $3
		WHERE id = $1`

	markOutboxDeadSQL = `
		UPDATE outbox_events
		SET attempts = attempts + 1,
			last_error = $2,
			dead_at = now()
		WHERE id = $1`
)

type OutboxRepository struct{}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, tx db.DBTX, msgs ...shared.OutboxMessage) error {
	for _, m := range msgs {
		_, err := tx.Exec(ctx, insertOutboxSQL,
			m.ID,
			string(m.Kind),
			m.Topic,
			m.AggregateID,
			m.Payload,
			pgconv.TimeToPgtype(m.AvailableAt),
		)
		if err != nil {
			return infra.WrapRepoErr("failed to enqueue outbox message", err)
		}
	}
	return nil
}

// OutboxStore serves the relay outside of any unit of work.
type OutboxStore struct {
	db db.DBTX
}

func NewOutboxStore(db db.DBTX) *OutboxStore {
	return &OutboxStore{db: db}
}

// ClaimDue leases up to limit due messages. A relay that dies mid-batch
// releases them when the lease runs out.
func (s *OutboxStore) ClaimDue(ctx context.Context, now time.Time, limit int) ([]shared.OutboxMessage, error) {
	rows, err := s.db.Query(ctx, claimOutboxSQL,
		pgconv.TimeToPgtype(now),
		pgconv.TimeToPgtype(now.Add(claimLease)),
		int32(limit),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim outbox messages", err)
	}
	defer rows.Close()

	var out []shared.OutboxMessage
	for rows.Next() {
		var (
			m           shared.OutboxMessage
			kind        string
			attempts    int32
			availableAt pgtype.Timestamptz
			createdAt   pgtype.Timestamptz
		)
		if err := rows.Scan(&m.ID, &kind, &m.Topic, &m.AggregateID, &m.Payload, &attempts, &availableAt, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan outbox message", err)
		}
		m.Kind = shared.OutboxKind(kind)
		m.Attempts = int(attempts)
		m.AvailableAt = pgconv.TimeFromPgtype(availableAt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read outbox messages", err)
	}
	return out, nil
}

func (s *OutboxStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := s.db.Exec(ctx, markOutboxPublishedSQL, id, pgconv.TimeToPgtype(at)); err != nil {
		return infra.WrapRepoErr("failed to mark outbox message published", err)
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, lastErr string, retryAt time.Time) error {
	if _, err := s.db.Exec(ctx, markOutboxFailedSQL, id, lastErr, pgconv.TimeToPgtype(retryAt)); err != nil {
		return infra.WrapRepoErr("failed to record outbox failure", err)
	}
	return nil
}

func (s *OutboxStore) MarkDead(ctx context.Context, id uuid.UUID, lastErr string) error {
	if _, err := s.db.Exec(ctx, markOutboxDeadSQL, id, lastErr); err != nil {
		return infra.WrapRepoErr("failed to park outbox message", err)
	}
	return nil
}
