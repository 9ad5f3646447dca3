// Package policy models cancellation and no-show fees and the versioned
// snapshot a booking keeps of them.
package policy

import (
	"encoding/json"
	"slices"
	"time"

	"booking-engine/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const CurrentVersion = 1

var (
	ErrInvalidFreeWindow        = errs.Validation("free cancellation window must not be negative")
	ErrInvalidTier              = errs.Validation("late fee tier needs a non-negative window and a fee between 0 and 100 percent")
	ErrInvalidNoShowFee         = errs.Validation("no-show fee must be between 0 and 100 percent")
	ErrUnsupportedPolicyVersion = errs.Validation("unsupported policy snapshot version")
	ErrMalformedSnapshot        = errs.Validation("malformed policy snapshot")
)

var hundred = decimal.NewFromInt(100)

// LateFeeTier applies when a cancellation happens WithinMinutes or less before start.
type LateFeeTier struct {
	WithinMinutes int             `json:"withinMinutes"`
	FeePercent    decimal.Decimal `json:"feePercent"`
}

// Policy is a service's live cancellation policy. Cancelling more than
// FreeCancellationMinutes before start is free; otherwise the tightest
// matching tier applies, and without one the whole deposit is kept.
type Policy struct {
	FreeCancellationMinutes int             `json:"freeCancellationMinutes"`
	LateFeeTiers            []LateFeeTier   `json:"lateFeeTiers"`
	NoShowFeePercent        decimal.Decimal `json:"noShowFeePercent"`
}

// Default is used for services created without an explicit policy.
func Default() Policy {
	return Policy{
		FreeCancellationMinutes: 24 * 60,
		NoShowFeePercent:        hundred,
	}
}

func (p Policy) Validate() error {
	if p.FreeCancellationMinutes < 0 {
		return ErrInvalidFreeWindow
	}
	for _, t := range p.LateFeeTiers {
		if t.WithinMinutes < 0 || !validPercent(t.FeePercent) {
			return ErrInvalidTier
		}
	}
	if !validPercent(p.NoShowFeePercent) {
		return ErrInvalidNoShowFee
	}
	return nil
}

func validPercent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

// Charge is the split of a deposit between customer refund and provider fee.
type Charge struct {
	RefundCents int64
	FeeCents    int64
}

// Snapshot is the immutable copy of a Policy stored on a booking.
type Snapshot struct {
	Version int `json:"version"`
	Policy
}

func Capture(p Policy) Snapshot {
	tiers := slices.Clone(p.LateFeeTiers)
	p.LateFeeTiers = tiers
	return Snapshot{Version: CurrentVersion, Policy: p}
}

func (s Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// ParseSnapshot reads a stored snapshot. Snapshots written before versioning
// carry no version field and share the version 1 layout.
func ParseSnapshot(raw []byte) (Snapshot, error) {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Snapshot{}, errs.Mark(err, ErrMalformedSnapshot)
	}

	switch head.Version {
	case 0, 1:
		var s Snapshot
		if err := json.Unmarshal(raw, &s); err != nil {
			return Snapshot{}, errs.Mark(err, ErrMalformedSnapshot)
		}
		s.Version = CurrentVersion
		return s, nil
	default:
		return Snapshot{}, ErrUnsupportedPolicyVersion
	}
}

// CancellationCharge splits the deposit for a cancellation made before the
// start. A negative before means the start has already passed. Windows are
// compared at full precision: 120m30s is more than 120 minutes.
func (s Snapshot) CancellationCharge(depositCents int64, before time.Duration) Charge {
	if before > minutes(s.FreeCancellationMinutes) {
		return Charge{RefundCents: depositCents}
	}

	pct := hundred
	tightest := -1
	for _, t := range s.LateFeeTiers {
		if before > minutes(t.WithinMinutes) {
			continue
		}
		if tightest == -1 || t.WithinMinutes < tightest {
			tightest = t.WithinMinutes
			pct = t.FeePercent
		}
	}
	return split(depositCents, pct)
}

func (s Snapshot) NoShowCharge(depositCents int64) Charge {
	return split(depositCents, s.NoShowFeePercent)
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }

func split(depositCents int64, feePercent decimal.Decimal) Charge {
	fee := decimal.NewFromInt(depositCents).Mul(feePercent).Div(hundred).Round(0).IntPart()
	if fee > depositCents {
		fee = depositCents
	}
	return Charge{RefundCents: depositCents - fee, FeeCents: fee}
}
