//go:build unit

package memstore

import (
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/provider"
	"booking-engine/internal/domain/service"
	"booking-engine/tests/common/builder"

	"github.com/google/uuid"
)

// Monday is the calendar day the seeded schedule is built around.
var Monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// Fixture is a UTC provider with a Monday 09:00-17:00 rule and one 60
// minute service with a 50.00 deposit.
type Fixture struct {
	Provider provider.Provider
	Service  *service.Service
	Rule     *availability.Rule
}

// At returns the seeded Monday at hh:mm UTC.
func At(hour, minute int) time.Time {
	return Monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func Seed(s *Store) Fixture {
	p := provider.Provider{ID: uuid.New(), Slug: "dr-ada", Name: "Dr Ada", Timezone: "UTC"}
	svc := builder.NewServiceBuilder().With(func(b *builder.ServiceBuilder) {
		b.ProviderID = p.ID
	}).BuildDomain()
	rule := builder.NewRuleBuilder().With(func(b *builder.RuleBuilder) {
		b.ProviderID = p.ID
	}).MustBuild()

	s.AddProvider(p)
	s.AddService(svc)
	s.AddRule(rule)
	return Fixture{Provider: p, Service: svc, Rule: rule}
}
