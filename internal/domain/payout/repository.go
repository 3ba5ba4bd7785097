package payout

import "errors"

var (
	ErrNotFound        = errors.New("payout not found")
	ErrSummaryNotFound = errors.New("payout summary not found")
)

type Repository interface {
	Save(*Payout) error
	FindByID(payoutID string) (*Payout, error)
	UpdateStatus(payoutID string, status Status) error
}

type SummaryRepository interface {
	// Upsert replaces any previous summary for the same payout id.
	Upsert(*Summary) error
	FindByPayoutID(payoutID string) (*Summary, error)
	// ListUnreconciled returns summaries with Reconciled=false, sorted by
	// absolute discrepancy descending. Empty tenantID means all tenants.
	ListUnreconciled(tenantID string) ([]*Summary, error)
	ListByTenant(tenantID string) ([]*Summary, error)
}
