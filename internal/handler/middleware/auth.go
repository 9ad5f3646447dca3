package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errNoActor      = errors.New("no authenticated actor in context")
	errRoleDenied   = errors.New("role not permitted on this route")
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxActorKey = "actor"
	ctxClaims   = "jwt_claims"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

// RequireAuth accepts provider and admin bearer tokens as well as customer
// manage tokens. Route groups narrow it down with RequireRole.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errMissingToken, "Access token required", nil)
			return
		}

		a, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		c.Set(ctxActorKey, a)
		c.Set(ctxClaims, map[string]any{
			"user_id": a.ID,
			"role":    a.Role.String(),
		})
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRole(roles ...actor.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := GetActor(c)
		if !ok {
			// RequireAuth must run first
			httperr.AbortWithError(c, http.StatusInternalServerError, errNoActor, "Internal server error", nil)
			return
		}
		if !a.Is(roles...) {
			httperr.AbortWithError(c, http.StatusForbidden, errRoleDenied, "Insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

func GetActor(c *gin.Context) (actor.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return actor.Actor{}, false
	}
	a, ok := v.(actor.Actor)
	return a, ok
}

// ProviderID returns the provider the authenticated actor speaks for.
func ProviderID(c *gin.Context) (uuid.UUID, bool) {
	a, ok := GetActor(c)
	if !ok || a.Role != actor.RoleProvider {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}
