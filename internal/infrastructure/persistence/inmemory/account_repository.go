package inmemory

import (
	"sync"

	"github.com/orkesta-pay/settlement-go/internal/domain/account"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*account.ConnectedAccount
	byTenant map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*account.ConnectedAccount),
		byTenant: make(map[string]string),
	}
}

func (r *AccountRepository) Save(a *account.ConnectedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *a
	r.accounts[a.AccountID] = &cp
	r.byTenant[a.TenantID] = a.AccountID
	return nil
}

func (r *AccountRepository) FindByID(accountID string) (*account.ConnectedAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[accountID]
	if !ok {
		return nil, account.ErrNotFound
	}

	cp := *a
	return &cp, nil
}

func (r *AccountRepository) FindByTenant(tenantID string) (*account.ConnectedAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byTenant[tenantID]
	if !ok {
		return nil, account.ErrNotFound
	}

	cp := *r.accounts[id]
	return &cp, nil
}

func (r *AccountRepository) Update(a *account.ConnectedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.AccountID]; !ok {
		return account.ErrNotFound
	}

	cp := *a
	r.accounts[a.AccountID] = &cp
	return nil
}
