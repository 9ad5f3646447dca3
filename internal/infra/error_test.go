//go:build unit

package infra_test

import (
	"context"
	"errors"
	"testing"

	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRepoErr_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want infra.RepositoryErrorKind
	}{
		{"no rows", pgx.ErrNoRows, infra.KindNotFound},
		{"exclusion violation", &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"}, infra.KindConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, infra.KindDuplicateKey},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, infra.KindForeignKeyViolated},
		{"other pg error", &pgconn.PgError{Code: "57014"}, infra.KindDBFailure},
		{"non pg error", errors.New("connection reset"), infra.KindDBFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := infra.WrapRepoErr("op failed", tt.err)
			assert.True(t, infra.IsKind(err, tt.want))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrapRepoErr_ExplicitKindWins(t *testing.T) {
	err := infra.WrapRepoErr("booking not found", &pgconn.PgError{Code: "23505"}, infra.KindNotFound)
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	assert.False(t, infra.IsKind(err, infra.KindDuplicateKey))
}

func TestWrapRepoErr_NilCause(t *testing.T) {
	err := infra.WrapRepoErr("rule not found", nil, infra.KindNotFound)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND: rule not found", err.Error())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestIsKind_OtherErrors(t *testing.T) {
	assert.False(t, infra.IsKind(errors.New("plain"), infra.KindNotFound))
	assert.False(t, infra.IsKind(nil, infra.KindNotFound))
}

func TestWrapRepoErr_TimeoutIsDependencyUnavailable(t *testing.T) {
	err := infra.WrapRepoErr("failed to list bookings", context.DeadlineExceeded)

	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	assert.True(t, errs.Is(err, errs.ErrDependencyUnavailable))
}

func TestWrapRepoErr_ConstraintFailureIsNotUnavailable(t *testing.T) {
	err := infra.WrapRepoErr("failed to create booking", &pgconn.PgError{Code: "23514"})

	assert.False(t, errs.Is(err, errs.ErrDependencyUnavailable))
}
