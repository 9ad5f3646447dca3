//go:build unit

package actor_test

import (
	"testing"

	"booking-engine/internal/domain/actor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	for _, s := range []string{"customer", "provider", "admin"} {
		role, err := actor.NewRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, role.String())
	}

	_, err := actor.NewRole("operator")
	assert.ErrorIs(t, err, actor.ErrInvalidRole)
}

func TestActorIs(t *testing.T) {
	a := actor.Actor{ID: "p-1", Role: actor.RoleProvider}
	assert.True(t, a.Is(actor.RoleProvider, actor.RoleAdmin))
	assert.False(t, a.Is(actor.RoleCustomer))
}
