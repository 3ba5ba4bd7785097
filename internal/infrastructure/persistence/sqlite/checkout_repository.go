package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/domain/account"
	"github.com/orkesta-pay/settlement-go/internal/domain/checkout"
)

type CheckoutRepository struct {
	db *sql.DB
}

func NewCheckoutRepository(db *sql.DB) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

// Save upserts: completing an intent rewrites the same row with the charge
// id and completion time filled in.
func (r *CheckoutRepository) Save(i *checkout.Intent) error {
	methods, err := json.Marshal(i.Methods)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(i.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO checkout_intents
		 (intent_id, tenant_id, order_id, amount, currency, methods, mode,
		  platform_fee, destination_id, checkout_url, charge_id, status,
		  expires_at, metadata, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.IntentID,
		i.TenantID,
		i.OrderID,
		i.Amount,
		i.Currency,
		string(methods),
		string(i.Mode),
		i.PlatformFee,
		i.DestinationID,
		i.CheckoutURL,
		i.ChargeID,
		string(i.Status),
		i.ExpiresAt,
		string(metadata),
		i.CreatedAt,
		i.CompletedAt,
	)
	return err
}

func (r *CheckoutRepository) FindByID(intentID string) (*checkout.Intent, error) {
	row := r.db.QueryRow(
		selectIntent+` WHERE intent_id = ?`,
		intentID,
	)
	return scanIntent(row)
}

func (r *CheckoutRepository) FindByChargeID(chargeID string) (*checkout.Intent, error) {
	row := r.db.QueryRow(
		selectIntent+` WHERE charge_id = ?`,
		chargeID,
	)
	return scanIntent(row)
}

func (r *CheckoutRepository) MarkExpired(cutoff time.Time) (int, error) {
	res, err := r.db.Exec(
		`UPDATE checkout_intents
		 SET status = ?
		 WHERE status = ? AND expires_at < ?`,
		string(checkout.StatusExpired),
		string(checkout.StatusPending),
		cutoff,
	)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

const selectIntent = `SELECT intent_id, tenant_id, order_id, amount, currency,
	methods, mode, platform_fee, destination_id, checkout_url, charge_id,
	status, expires_at, metadata, created_at, completed_at
	FROM checkout_intents`

func scanIntent(row *sql.Row) (*checkout.Intent, error) {
	var (
		i        checkout.Intent
		methods  string
		mode     string
		status   string
		metadata string
	)

	if err := row.Scan(
		&i.IntentID,
		&i.TenantID,
		&i.OrderID,
		&i.Amount,
		&i.Currency,
		&methods,
		&mode,
		&i.PlatformFee,
		&i.DestinationID,
		&i.CheckoutURL,
		&i.ChargeID,
		&status,
		&i.ExpiresAt,
		&metadata,
		&i.CreatedAt,
		&i.CompletedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkout.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(methods), &i.Methods); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &i.Metadata); err != nil {
		return nil, err
	}
	i.Mode = account.SettlementMode(mode)
	i.Status = checkout.Status(status)

	return &i, nil
}
