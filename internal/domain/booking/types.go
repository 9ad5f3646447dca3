package booking

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// Disputable statuses are the ones a customer can open a dispute on.
func (s Status) Disputable() bool {
	return s == StatusCancelled || s == StatusNoShow || s == StatusCompleted
}

type DepositStatus string

const (
	DepositPending           DepositStatus = "pending"
	DepositPaid              DepositStatus = "paid"
	DepositRefundPending     DepositStatus = "refund_pending"
	DepositRefunded          DepositStatus = "refunded"
	DepositPartiallyRefunded DepositStatus = "partially_refunded"
	DepositForfeited         DepositStatus = "forfeited"
	DepositEarned            DepositStatus = "earned"
	DepositVoided            DepositStatus = "voided"
)

func (s DepositStatus) String() string { return string(s) }

// Captured reports whether money was taken from the customer.
func (s DepositStatus) Captured() bool {
	switch s {
	case DepositPaid, DepositRefundPending, DepositRefunded, DepositPartiallyRefunded, DepositForfeited, DepositEarned:
		return true
	default:
		return false
	}
}

type DisputeStatus string

const (
	DisputeNone             DisputeStatus = "none"
	DisputePending          DisputeStatus = "pending"
	DisputeResolvedCustomer DisputeStatus = "resolved_customer"
	DisputeResolvedProvider DisputeStatus = "resolved_provider"
)

func (s DisputeStatus) String() string { return string(s) }

func NewResolution(s string) (DisputeStatus, error) {
	switch d := DisputeStatus(s); d {
	case DisputeResolvedCustomer, DisputeResolvedProvider:
		return d, nil
	default:
		return "", ErrInvalidResolution
	}
}
