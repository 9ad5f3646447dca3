package service

import (
	"strings"
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/policy"
	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName       = errs.Validation("service name is required")
	ErrInvalidDeposit  = errs.Validation("deposit must be a non-negative fixed amount or a 0-100 percentage of a positive price")
	ErrServiceInactive = errs.NotFound("service not found")
)

type DepositKind string

const (
	DepositFixed      DepositKind = "fixed"
	DepositPercentage DepositKind = "percentage"
)

// Deposit is either a fixed amount or a percentage of the full price, in cents.
type Deposit struct {
	Kind           DepositKind
	AmountCents    int64
	Percent        decimal.Decimal
	FullPriceCents int64
}

func (d Deposit) Validate() error {
	switch d.Kind {
	case DepositFixed:
		if d.AmountCents < 0 {
			return ErrInvalidDeposit
		}
	case DepositPercentage:
		if d.FullPriceCents <= 0 || d.Percent.IsNegative() || d.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidDeposit
		}
	default:
		return ErrInvalidDeposit
	}
	return nil
}

// Cents rounds percentage deposits half away from zero.
func (d Deposit) Cents() int64 {
	if d.Kind == DepositFixed {
		return d.AmountCents
	}
	return decimal.NewFromInt(d.FullPriceCents).Mul(d.Percent).Div(decimal.NewFromInt(100)).Round(0).IntPart()
}

type Service struct {
	id         uuid.UUID
	providerID uuid.UUID
	name       string
	duration   int
	deposit    Deposit
	policy     policy.Policy
	isActive   bool
	createdAt  time.Time
}

func NewService(id, providerID uuid.UUID, name string, duration int, deposit Deposit, pol policy.Policy, isActive bool, now time.Time) (*Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := availability.ValidateSlotDuration(duration); err != nil {
		return nil, err
	}
	if err := deposit.Validate(); err != nil {
		return nil, err
	}
	if err := pol.Validate(); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Service{
		id:         id,
		providerID: providerID,
		name:       name,
		duration:   duration,
		deposit:    deposit,
		policy:     pol,
		isActive:   isActive,
		createdAt:  now,
	}, nil
}

func ReconstructService(id, providerID uuid.UUID, name string, duration int, deposit Deposit, pol policy.Policy, isActive bool, createdAt time.Time) *Service {
	return &Service{
		id:         id,
		providerID: providerID,
		name:       name,
		duration:   duration,
		deposit:    deposit,
		policy:     pol,
		isActive:   isActive,
		createdAt:  createdAt,
	}
}

func (s *Service) ID() uuid.UUID         { return s.id }
func (s *Service) ProviderID() uuid.UUID { return s.providerID }
func (s *Service) Name() string          { return s.name }
func (s *Service) Duration() int         { return s.duration }
func (s *Service) Deposit() Deposit      { return s.deposit }
func (s *Service) Policy() policy.Policy { return s.policy }
func (s *Service) IsActive() bool        { return s.isActive }
func (s *Service) CreatedAt() time.Time  { return s.createdAt }

// Bookable hides inactive services from public queries and new bookings.
func (s *Service) Bookable() error {
	if !s.isActive {
		return ErrServiceInactive
	}
	return nil
}
