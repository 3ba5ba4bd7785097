package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/orkesta-pay/settlement-go/internal/domain/account"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Save(a *account.ConnectedAccount) error {
	caps, err := json.Marshal(a.Capabilities)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO connected_accounts
		 (account_id, tenant_id, mode, percent_bps, fixed_fee, min_fee, max_fee,
		  onboarding_complete, capabilities, disabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AccountID,
		a.TenantID,
		string(a.Mode),
		a.FeePolicy.PercentBps,
		a.FeePolicy.Fixed,
		a.FeePolicy.MinFee,
		a.FeePolicy.MaxFee,
		a.OnboardingComplete,
		string(caps),
		a.Disabled,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AccountRepository) FindByID(accountID string) (*account.ConnectedAccount, error) {
	row := r.db.QueryRow(
		selectAccount+` WHERE account_id = ?`,
		accountID,
	)
	return scanAccount(row)
}

func (r *AccountRepository) FindByTenant(tenantID string) (*account.ConnectedAccount, error) {
	row := r.db.QueryRow(
		selectAccount+` WHERE tenant_id = ?`,
		tenantID,
	)
	return scanAccount(row)
}

func (r *AccountRepository) Update(a *account.ConnectedAccount) error {
	caps, err := json.Marshal(a.Capabilities)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(
		`UPDATE connected_accounts
		 SET tenant_id = ?, mode = ?, percent_bps = ?, fixed_fee = ?,
		     min_fee = ?, max_fee = ?, onboarding_complete = ?,
		     capabilities = ?, disabled = ?, updated_at = ?
		 WHERE account_id = ?`,
		a.TenantID,
		string(a.Mode),
		a.FeePolicy.PercentBps,
		a.FeePolicy.Fixed,
		a.FeePolicy.MinFee,
		a.FeePolicy.MaxFee,
		a.OnboardingComplete,
		string(caps),
		a.Disabled,
		a.UpdatedAt,
		a.AccountID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}

const selectAccount = `SELECT account_id, tenant_id, mode, percent_bps, fixed_fee,
	min_fee, max_fee, onboarding_complete, capabilities, disabled,
	created_at, updated_at
	FROM connected_accounts`

func scanAccount(row *sql.Row) (*account.ConnectedAccount, error) {
	var (
		a    account.ConnectedAccount
		mode string
		caps string
	)

	if err := row.Scan(
		&a.AccountID,
		&a.TenantID,
		&mode,
		&a.FeePolicy.PercentBps,
		&a.FeePolicy.Fixed,
		&a.FeePolicy.MinFee,
		&a.FeePolicy.MaxFee,
		&a.OnboardingComplete,
		&caps,
		&a.Disabled,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, err
	}

	a.Mode = account.SettlementMode(mode)
	if err := json.Unmarshal([]byte(caps), &a.Capabilities); err != nil {
		return nil, err
	}

	return &a, nil
}
