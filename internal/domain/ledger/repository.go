package ledger

import "time"

type Repository interface {
	Append(*Entry) error
	// FindInWindow returns entries for the account whose settlement time
	// falls within [from, to].
	FindInWindow(accountID string, from, to time.Time) ([]*Entry, error)
	ListByTenant(tenantID string, limit int) ([]*Entry, error)
}
