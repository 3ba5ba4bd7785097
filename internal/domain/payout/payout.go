package payout

import "time"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Payout is a batched disbursement reported by the processor. The
// reconciler reads it and writes a Summary; it never mutates the payout.
type Payout struct {
	PayoutID    string
	TenantID    string
	AccountID   string
	Amount      int64
	Currency    string
	Status      Status
	PeriodStart time.Time
	PeriodEnd   time.Time
	ArrivalDate time.Time
	CreatedAt   time.Time
}

// Summary is the reconciler's view of one payout: expected components,
// the computed net, and how far the actual disbursement deviates.
type Summary struct {
	PayoutID      string
	TenantID      string
	AccountID     string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	GrossAmount   int64
	ProcessorFees int64
	PlatformFees  int64
	Refunds       int64
	Disputes      int64
	Adjustments   int64
	NetAmount     int64
	ActualAmount  int64
	Diff          int64
	Reconciled    bool
	ReconciledAt  time.Time
	CreatedAt     time.Time
}

// ComputeNet fills NetAmount from the summed components.
func (s *Summary) ComputeNet() {
	s.NetAmount = s.GrossAmount -
		s.ProcessorFees -
		s.PlatformFees -
		s.Refunds -
		s.Disputes +
		s.Adjustments
}
