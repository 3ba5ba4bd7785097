package inmemory

import (
	"sync"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/domain/checkout"
)

type CheckoutRepository struct {
	mu       sync.RWMutex
	intents  map[string]*checkout.Intent
	byCharge map[string]string
}

func NewCheckoutRepository() *CheckoutRepository {
	return &CheckoutRepository{
		intents:  make(map[string]*checkout.Intent),
		byCharge: make(map[string]string),
	}
}

func (r *CheckoutRepository) Save(i *checkout.Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *i
	r.intents[i.IntentID] = &cp
	if i.ChargeID != "" {
		r.byCharge[i.ChargeID] = i.IntentID
	}
	return nil
}

func (r *CheckoutRepository) FindByID(intentID string) (*checkout.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.intents[intentID]
	if !ok {
		return nil, checkout.ErrNotFound
	}

	cp := *i
	return &cp, nil
}

func (r *CheckoutRepository) FindByChargeID(chargeID string) (*checkout.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCharge[chargeID]
	if !ok {
		return nil, checkout.ErrNotFound
	}

	cp := *r.intents[id]
	return &cp, nil
}

func (r *CheckoutRepository) MarkExpired(cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, i := range r.intents {
		if i.Status == checkout.StatusPending && i.ExpiresAt.Before(cutoff) {
			i.Status = checkout.StatusExpired
			n++
		}
	}
	return n, nil
}
