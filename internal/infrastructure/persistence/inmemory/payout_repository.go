package inmemory

import (
	"sort"
	"sync"

	"github.com/orkesta-pay/settlement-go/internal/domain/payout"
)

type PayoutRepository struct {
	mu      sync.RWMutex
	payouts map[string]*payout.Payout
}

func NewPayoutRepository() *PayoutRepository {
	return &PayoutRepository{
		payouts: make(map[string]*payout.Payout),
	}
}

func (r *PayoutRepository) Save(p *payout.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	r.payouts[p.PayoutID] = &cp
	return nil
}

func (r *PayoutRepository) FindByID(payoutID string) (*payout.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payouts[payoutID]
	if !ok {
		return nil, payout.ErrNotFound
	}

	cp := *p
	return &cp, nil
}

func (r *PayoutRepository) UpdateStatus(payoutID string, status payout.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payouts[payoutID]
	if !ok {
		return payout.ErrNotFound
	}

	p.Status = status
	return nil
}

type SummaryRepository struct {
	mu        sync.RWMutex
	summaries map[string]*payout.Summary
}

func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{
		summaries: make(map[string]*payout.Summary),
	}
}

func (r *SummaryRepository) Upsert(s *payout.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	r.summaries[s.PayoutID] = &cp
	return nil
}

func (r *SummaryRepository) FindByPayoutID(payoutID string) (*payout.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.summaries[payoutID]
	if !ok {
		return nil, payout.ErrSummaryNotFound
	}

	cp := *s
	return &cp, nil
}

func (r *SummaryRepository) ListUnreconciled(tenantID string) ([]*payout.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*payout.Summary
	for _, s := range r.summaries {
		if s.Reconciled {
			continue
		}
		if tenantID != "" && s.TenantID != tenantID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return abs(out[i].Diff) > abs(out[j].Diff)
	})
	return out, nil
}

func (r *SummaryRepository) ListByTenant(tenantID string) ([]*payout.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*payout.Summary
	for _, s := range r.summaries {
		if s.TenantID != tenantID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
