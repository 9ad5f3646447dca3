//go:build unit

package api_test

import (
	"errors"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/handler/middleware"

	"github.com/google/uuid"
)

const (
	providerToken = "provider-token"
	customerToken = "customer-token"
	adminToken    = "admin-token"
)

// stubValidator maps fixed tokens to actors so routes run through the real
// auth middleware.
type stubValidator struct {
	providerID uuid.UUID
	bookingID  uuid.UUID
}

func (v stubValidator) ValidateToken(token string) (actor.Actor, error) {
	switch token {
	case providerToken:
		return actor.Actor{ID: v.providerID.String(), Role: actor.RoleProvider}, nil
	case customerToken:
		return actor.Actor{ID: v.bookingID.String(), Role: actor.RoleCustomer}, nil
	case adminToken:
		return actor.Actor{ID: uuid.NewString(), Role: actor.RoleAdmin}, nil
	default:
		return actor.Actor{}, errors.New("invalid token")
	}
}

func newAuth(providerID, bookingID uuid.UUID) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(stubValidator{providerID: providerID, bookingID: bookingID})
}
