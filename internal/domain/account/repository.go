package account

import "errors"

var ErrNotFound = errors.New("connected account not found")

type Repository interface {
	Save(*ConnectedAccount) error
	FindByID(accountID string) (*ConnectedAccount, error)
	FindByTenant(tenantID string) (*ConnectedAccount, error)
	Update(*ConnectedAccount) error
}
