package bootstrap

import (
	"time"

	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/jwt"
	"booking-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
		func(s *jwt.Service) shared.ManageTokenIssuer { return s },
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	tokenDuration, err := time.ParseDuration(cfg.JWT.Duration)
	if err != nil {
		panic("invalid JWT_DURATION: " + err.Error())
	}

	manageTokenDuration, err := time.ParseDuration(cfg.JWT.ManageTokenDuration)
	if err != nil {
		panic("invalid JWT_MANAGE_TOKEN_DURATION: " + err.Error())
	}

	return jwt.NewService(cfg.JWT.Secret, tokenDuration, manageTokenDuration)
}
