//go:build unit || e2e

package dbtest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"booking-engine/internal/domain/policy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const DefaultProviderSlug = "test-clinic"

func CreateTestProvider(t *testing.T, db DBLike, slug, timezone string) uuid.UUID {
	t.Helper()

	providerID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO providers (id, slug, name, timezone) VALUES ($1, $2, $3, $4) ON CONFLICT (slug) DO NOTHING",
		providerID, slug, "Provider "+slug, timezone)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM providers WHERE slug = $1", slug).Scan(&providerID)
	}

	return providerID
}

// CreateTestService inserts an active fixed-deposit service using pol as its
// cancellation policy.
func CreateTestService(t *testing.T, db DBLike, providerID uuid.UUID, name string, durationMinutes int, depositCents int64, pol policy.Policy) uuid.UUID {
	t.Helper()

	raw, err := json.Marshal(pol)
	require.NoError(t, err)

	serviceID := uuid.New()
	_, err = db.Exec(context.Background(), `
		INSERT INTO services (id, provider_id, name, duration_minutes, deposit_kind, deposit_amount_cents, cancellation_policy, is_active)
		VALUES ($1, $2, $3, $4, 'fixed', $5, $6, true)`,
		serviceID, providerID, name, durationMinutes, depositCents, raw)
	require.NoError(t, err)

	return serviceID
}

// CreateTestRule opens weekday between startMinute and endMinute, in minutes
// from midnight of the provider's timezone.
func CreateTestRule(t *testing.T, db DBLike, providerID uuid.UUID, weekday time.Weekday, startMinute, endMinute, slotDuration int) uuid.UUID {
	t.Helper()

	ruleID := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO availability_rules (id, provider_id, day_of_week, start_minute, end_minute, slot_duration)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ruleID, providerID, int(weekday), startMinute, endMinute, slotDuration)
	require.NoError(t, err)

	return ruleID
}

func CountBookings(t *testing.T, db DBLike, providerID uuid.UUID, status string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM bookings WHERE provider_id = $1 AND status = $2", providerID, status).Scan(&n)
	require.NoError(t, err)
	return n
}

func CountOutboxEvents(t *testing.T, db DBLike, aggregateID uuid.UUID, kind string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM outbox_events WHERE aggregate_id = $1 AND kind = $2", aggregateID, kind).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO providers (id, slug, name, timezone) VALUES
		    (gen_random_uuid(), $1, 'Test Clinic', 'UTC')
		ON CONFLICT (slug) DO NOTHING;
	`, DefaultProviderSlug)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
