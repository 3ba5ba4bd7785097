package inmemory

import (
	"sort"
	"sync"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/domain/ledger"
)

type LedgerRepository struct {
	mu      sync.RWMutex
	entries []*ledger.Entry
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

func (r *LedgerRepository) Append(e *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *LedgerRepository) FindInWindow(accountID string, from, to time.Time) ([]*ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ledger.Entry
	for _, e := range r.entries {
		if e.AccountID != accountID {
			continue
		}
		if e.SettledAt.Before(from) || e.SettledAt.After(to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *LedgerRepository) ListByTenant(tenantID string, limit int) ([]*ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ledger.Entry
	for _, e := range r.entries {
		if e.TenantID != tenantID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SettledAt.After(out[j].SettledAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
