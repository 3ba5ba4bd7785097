package sqlite

import (
	"database/sql"
	"errors"

	"github.com/orkesta-pay/settlement-go/internal/domain/payout"
)

type PayoutRepository struct {
	db *sql.DB
}

func NewPayoutRepository(db *sql.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) Save(p *payout.Payout) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO payouts
		 (payout_id, tenant_id, account_id, amount, currency, status,
		  period_start, period_end, arrival_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PayoutID,
		p.TenantID,
		p.AccountID,
		p.Amount,
		p.Currency,
		string(p.Status),
		p.PeriodStart,
		p.PeriodEnd,
		p.ArrivalDate,
		p.CreatedAt,
	)
	return err
}

func (r *PayoutRepository) FindByID(payoutID string) (*payout.Payout, error) {
	row := r.db.QueryRow(
		`SELECT payout_id, tenant_id, account_id, amount, currency, status,
		        period_start, period_end, arrival_date, created_at
		 FROM payouts
		 WHERE payout_id = ?`,
		payoutID,
	)

	var (
		p      payout.Payout
		status string
	)

	if err := row.Scan(
		&p.PayoutID,
		&p.TenantID,
		&p.AccountID,
		&p.Amount,
		&p.Currency,
		&status,
		&p.PeriodStart,
		&p.PeriodEnd,
		&p.ArrivalDate,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payout.ErrNotFound
		}
		return nil, err
	}

	p.Status = payout.Status(status)
	return &p, nil
}

func (r *PayoutRepository) UpdateStatus(payoutID string, status payout.Status) error {
	res, err := r.db.Exec(
		`UPDATE payouts SET status = ? WHERE payout_id = ?`,
		string(status),
		payoutID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return payout.ErrNotFound
	}

	return nil
}

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Upsert(s *payout.Summary) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO payout_summaries
		 (payout_id, tenant_id, account_id, period_start, period_end,
		  gross_amount, processor_fees, platform_fees, refunds, disputes,
		  adjustments, net_amount, actual_amount, diff, reconciled,
		  reconciled_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.PayoutID,
		s.TenantID,
		s.AccountID,
		s.PeriodStart,
		s.PeriodEnd,
		s.GrossAmount,
		s.ProcessorFees,
		s.PlatformFees,
		s.Refunds,
		s.Disputes,
		s.Adjustments,
		s.NetAmount,
		s.ActualAmount,
		s.Diff,
		s.Reconciled,
		s.ReconciledAt,
		s.CreatedAt,
	)
	return err
}

func (r *SummaryRepository) FindByPayoutID(payoutID string) (*payout.Summary, error) {
	row := r.db.QueryRow(
		selectSummary+` WHERE payout_id = ?`,
		payoutID,
	)

	s, err := scanSummary(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payout.ErrSummaryNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SummaryRepository) ListUnreconciled(tenantID string) ([]*payout.Summary, error) {
	rows, err := r.db.Query(
		selectSummary+`
		 WHERE reconciled = 0
		   AND (? = '' OR tenant_id = ?)
		 ORDER BY ABS(diff) DESC`,
		tenantID, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSummaries(rows)
}

func (r *SummaryRepository) ListByTenant(tenantID string) ([]*payout.Summary, error) {
	rows, err := r.db.Query(
		selectSummary+`
		 WHERE tenant_id = ?
		 ORDER BY period_start ASC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSummaries(rows)
}

const selectSummary = `SELECT payout_id, tenant_id, account_id, period_start,
	period_end, gross_amount, processor_fees, platform_fees, refunds,
	disputes, adjustments, net_amount, actual_amount, diff, reconciled,
	reconciled_at, created_at
	FROM payout_summaries`

func scanSummary(scan func(dest ...any) error) (*payout.Summary, error) {
	var s payout.Summary

	if err := scan(
		&s.PayoutID,
		&s.TenantID,
		&s.AccountID,
		&s.PeriodStart,
		&s.PeriodEnd,
		&s.GrossAmount,
		&s.ProcessorFees,
		&s.PlatformFees,
		&s.Refunds,
		&s.Disputes,
		&s.Adjustments,
		&s.NetAmount,
		&s.ActualAmount,
		&s.Diff,
		&s.Reconciled,
		&s.ReconciledAt,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &s, nil
}

func collectSummaries(rows *sql.Rows) ([]*payout.Summary, error) {
	var out []*payout.Summary
	for rows.Next() {
		s, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
