package sqlite

import (
	"database/sql"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/domain/ledger"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Append(e *ledger.Entry) error {
	_, err := r.db.Exec(
		`INSERT INTO ledger_entries
		 (entry_id, tenant_id, account_id, entry_type, amount, processor_fee,
		  platform_fee, currency, source_id, settled_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntryID,
		e.TenantID,
		e.AccountID,
		string(e.Type),
		e.Amount,
		e.ProcessorFee,
		e.PlatformFee,
		e.Currency,
		e.SourceID,
		e.SettledAt,
		e.CreatedAt,
	)
	return err
}

func (r *LedgerRepository) FindInWindow(accountID string, from, to time.Time) ([]*ledger.Entry, error) {
	rows, err := r.db.Query(
		selectEntry+`
		 WHERE account_id = ?
		   AND settled_at >= ? AND settled_at <= ?
		 ORDER BY settled_at ASC`,
		accountID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *LedgerRepository) ListByTenant(tenantID string, limit int) ([]*ledger.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(
		selectEntry+`
		 WHERE tenant_id = ?
		 ORDER BY settled_at DESC
		 LIMIT ?`,
		tenantID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

const selectEntry = `SELECT entry_id, tenant_id, account_id, entry_type,
	amount, processor_fee, platform_fee, currency, source_id, settled_at,
	created_at
	FROM ledger_entries`

func collectEntries(rows *sql.Rows) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for rows.Next() {
		var (
			e   ledger.Entry
			typ string
		)
		if err := rows.Scan(
			&e.EntryID,
			&e.TenantID,
			&e.AccountID,
			&typ,
			&e.Amount,
			&e.ProcessorFee,
			&e.PlatformFee,
			&e.Currency,
			&e.SourceID,
			&e.SettledAt,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Type = ledger.EntryType(typ)
		out = append(out, &e)
	}
	return out, rows.Err()
}
