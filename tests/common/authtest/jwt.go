//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) service(t *testing.T, tokenDuration time.Duration) *jwt.Service {
	t.Helper()
	manageDuration, err := time.ParseDuration(h.cfg.ManageTokenDuration)
	require.NoError(t, err)
	return jwt.NewService(h.cfg.Secret, tokenDuration, manageDuration)
}

func (h *JWTHelper) GenerateToken(t *testing.T, subjectID uuid.UUID, role actor.Role) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, err := h.service(t, duration).GenerateToken(subjectID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) ProviderToken(t *testing.T, providerID uuid.UUID) string {
	t.Helper()
	return h.GenerateToken(t, providerID, actor.RoleProvider)
}

func (h *JWTHelper) AdminToken(t *testing.T) string {
	t.Helper()
	return h.GenerateToken(t, uuid.New(), actor.RoleAdmin)
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, subjectID uuid.UUID, role actor.Role) string {
	t.Helper()
	token, err := h.service(t, time.Millisecond).GenerateToken(subjectID, role)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}
