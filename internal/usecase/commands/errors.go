package commands

import (
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/errs"
)

var (
	ErrProviderNotFound    = errs.NotFound("provider not found")
	ErrServiceNotFound     = errs.NotFound("service not found")
	ErrRuleNotFound        = errs.NotFound("availability rule not found")
	ErrBlockedSlotNotFound = errs.NotFound("blocked slot not found")

	ErrInvalidIdempotencyKey = errs.Validation("idempotency key must be at most 255 characters")
	ErrIdempotencyKeyReused  = errs.Conflict("idempotency key was already used for a different request")
	ErrIdempotencyInProgress = errs.Conflict("a request with this idempotency key is still in progress")
)

// notFoundAs replaces a repository NOT_FOUND with the caller's sentinel.
func notFoundAs(err, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return sentinel
	}
	return err
}
