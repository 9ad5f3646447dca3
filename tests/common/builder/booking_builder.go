//go:build unit || e2e

package builder

import (
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/policy"
	"booking-engine/internal/domain/service"
	reqdto "booking-engine/internal/handler/dto/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceBuilder struct {
	ID         uuid.UUID
	ProviderID uuid.UUID
	Name       string
	Duration   int
	Deposit    service.Deposit
	Policy     policy.Policy
	IsActive   bool
}

// NewServiceBuilder defaults to a 60 minute service with a 50.00 deposit that
// is free to cancel more than 120 minutes ahead.
func NewServiceBuilder() *ServiceBuilder {
	return &ServiceBuilder{
		ID:         uuid.New(),
		ProviderID: uuid.New(),
		Name:       "Consultation",
		Duration:   60,
		Deposit:    service.Deposit{Kind: service.DepositFixed, AmountCents: 5000},
		Policy: policy.Policy{
			FreeCancellationMinutes: 120,
			LateFeeTiers: []policy.LateFeeTier{
				{WithinMinutes: 120, FeePercent: decimal.NewFromInt(50)},
				{WithinMinutes: 30, FeePercent: decimal.NewFromInt(100)},
			},
			NoShowFeePercent: decimal.NewFromInt(100),
		},
		IsActive: true,
	}
}

func (b *ServiceBuilder) With(mutate func(*ServiceBuilder)) *ServiceBuilder {
	mutate(b)
	return b
}

func (b *ServiceBuilder) BuildDomain() *service.Service {
	return service.ReconstructService(b.ID, b.ProviderID, b.Name, b.Duration, b.Deposit, b.Policy, b.IsActive, time.Now())
}

type BookingBuilder struct {
	ID      uuid.UUID
	Service *ServiceBuilder
	Name    string
	Email   string
	Phone   string
	Start   time.Time
	Now     time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:      uuid.New(),
		Service: NewServiceBuilder(),
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Phone:   "+44 20 7946 0000",
		Start:   now.Add(200 * time.Minute),
		Now:     now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	customer, err := booking.NewCustomer(b.Name, b.Email, b.Phone)
	if err != nil {
		return nil, err
	}
	svc := b.Service.BuildDomain()
	return booking.New(booking.NewParams{
		ID:         b.ID,
		ProviderID: svc.ProviderID(),
		Service:    svc,
		Customer:   customer,
		Start:      b.Start,
	}, b.Now)
}

// MustConfirmed returns a booking that already went through Confirm.
func (b *BookingBuilder) MustConfirmed() *booking.Booking {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	if err := bk.Confirm("pi_test", b.Now); err != nil {
		panic(err)
	}
	bk.PullNotifications()
	bk.PullPaymentRequests()
	return bk
}

func (b *BookingBuilder) MustPending() *booking.Booking {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	bk.PullPaymentRequests()
	return bk
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		ServiceID:     b.Service.ID,
		Start:         b.Start,
		CustomerName:  b.Name,
		CustomerEmail: b.Email,
		CustomerPhone: b.Phone,
	}
}
