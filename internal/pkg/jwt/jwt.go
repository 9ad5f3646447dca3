package jwt

import (
	"errors"
	"time"

	"booking-engine/internal/domain/actor"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims identify a provider or admin by account id, or a customer by the
// booking id their manage token was issued for.
type Claims struct {
	SubjectID uuid.UUID `json:"sub_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	secretKey           []byte
	tokenDuration       time.Duration
	manageTokenDuration time.Duration
	now                 func() time.Time
}

func NewService(secretKey string, tokenDuration, manageTokenDuration time.Duration) *Service {
	return &Service{
		secretKey:           []byte(secretKey),
		tokenDuration:       tokenDuration,
		manageTokenDuration: manageTokenDuration,
		now:                 time.Now,
	}
}

func (s *Service) GenerateToken(subjectID uuid.UUID, role actor.Role) (string, error) {
	return s.sign(subjectID, role, s.tokenDuration)
}

// GenerateManageToken issues the customer token that authorises actions on
// a single booking.
func (s *Service) GenerateManageToken(bookingID uuid.UUID) (string, error) {
	return s.sign(bookingID, actor.RoleCustomer, s.manageTokenDuration)
}

func (s *Service) sign(subjectID uuid.UUID, role actor.Role, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		SubjectID: subjectID,
		Role:      role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
