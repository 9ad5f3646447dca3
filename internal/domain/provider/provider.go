package provider

import (
	"time"

	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrUnknownTimezone = errs.Validation("unknown provider timezone")

// Provider is read-only here; accounts are managed elsewhere.
type Provider struct {
	ID       uuid.UUID
	Slug     string
	Name     string
	Timezone string
}

func (p Provider) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, errs.Mark(err, ErrUnknownTimezone)
	}
	return loc, nil
}
