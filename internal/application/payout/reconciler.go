package payout

import (
	"context"
	"errors"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/application/contracts"
	"github.com/orkesta-pay/settlement-go/internal/domain/ledger"
	domainPayout "github.com/orkesta-pay/settlement-go/internal/domain/payout"
	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/processor"
)

// DefaultTolerance is how far (in minor units) the actual disbursement may
// deviate from the computed net before the payout is flagged.
const DefaultTolerance = 100

// Reconciler recomputes what a payout should have disbursed from the ledger
// and compares it against what the processor actually paid. It only writes
// summaries; payout records stay untouched.
type Reconciler struct {
	Payouts   domainPayout.Repository
	Summaries domainPayout.SummaryRepository
	Ledger    ledger.Repository
	Processor processor.Client
	Logger    logging.Logger
	Metrics   *metrics.Counters
	Tolerance int64
	Now       func() time.Time
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Reconciler) tolerance() int64 {
	if r.Tolerance > 0 {
		return r.Tolerance
	}
	return DefaultTolerance
}

// Reconcile sums the ledger entries settled inside the payout window, derives
// the expected net, and upserts the summary. A payout unknown locally is
// fetched from the processor once so reconciliation still works when the
// payout.paid event was missed.
func (r *Reconciler) Reconcile(ctx context.Context, payoutID string) (*domainPayout.Summary, error) {
	if payoutID == "" {
		return nil, contracts.Invalid("payoutId", "required")
	}

	p, err := r.Payouts.FindByID(payoutID)
	if errors.Is(err, domainPayout.ErrNotFound) {
		p, err = r.fetchFromProcessor(ctx, payoutID)
	}
	if err != nil {
		return nil, err
	}

	entries, err := r.Ledger.FindInWindow(p.AccountID, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return nil, err
	}

	now := r.now()
	summary := &domainPayout.Summary{
		PayoutID:     p.PayoutID,
		TenantID:     p.TenantID,
		AccountID:    p.AccountID,
		PeriodStart:  p.PeriodStart,
		PeriodEnd:    p.PeriodEnd,
		ActualAmount: p.Amount,
		ReconciledAt: now,
		CreatedAt:    now,
	}

	for _, e := range entries {
		switch e.Type {
		case ledger.EntryCharge:
			summary.GrossAmount += e.Amount
			summary.ProcessorFees += e.ProcessorFee
			summary.PlatformFees += e.PlatformFee
		case ledger.EntryRefund:
			summary.Refunds += e.Amount
		case ledger.EntryDispute:
			summary.Disputes += e.Amount
		case ledger.EntryAdjustment:
			summary.Adjustments += e.Amount
		}
	}

	summary.ComputeNet()
	summary.Diff = summary.NetAmount - summary.ActualAmount
	summary.Reconciled = abs(summary.Diff) <= r.tolerance()

	if err := r.Summaries.Upsert(summary); err != nil {
		return nil, err
	}

	r.Metrics.IncPayoutsReconciled()
	if !summary.Reconciled {
		r.Metrics.IncPayoutDiscrepancies()
		r.Logger.Error("payout discrepancy", map[string]any{
			"payout_id": payoutID,
			"tenant_id": p.TenantID,
			"net":       summary.NetAmount,
			"actual":    summary.ActualAmount,
			"diff":      summary.Diff,
		})
	} else {
		r.Logger.Info("payout reconciled", map[string]any{
			"payout_id": payoutID,
			"tenant_id": p.TenantID,
			"net":       summary.NetAmount,
		})
	}

	return summary, nil
}

// fetchFromProcessor pulls an unknown payout from the upstream API and
// persists it with the standard settlement window before reconciling.
func (r *Reconciler) fetchFromProcessor(ctx context.Context, payoutID string) (*domainPayout.Payout, error) {
	record, err := r.Processor.GetPayout(ctx, "", payoutID)
	if err != nil {
		return nil, err
	}

	p := &domainPayout.Payout{
		PayoutID:    record.PayoutID,
		AccountID:   record.AccountID,
		Amount:      record.Amount,
		Currency:    record.Currency,
		Status:      domainPayout.Status(record.Status),
		PeriodStart: record.ArrivalDate.AddDate(0, 0, -7),
		PeriodEnd:   record.ArrivalDate,
		ArrivalDate: record.ArrivalDate,
		CreatedAt:   r.now(),
	}
	if err := r.Payouts.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Discrepancies lists every unreconciled summary for a tenant, worst first.
func (r *Reconciler) Discrepancies(ctx context.Context, tenantID string) ([]*domainPayout.Summary, error) {
	return r.Summaries.ListUnreconciled(tenantID)
}

// Report aggregates a tenant's summaries whose windows overlap [from, to].
type Report struct {
	TenantID      string `json:"tenant_id"`
	Payouts       int    `json:"payouts"`
	Reconciled    int    `json:"reconciled"`
	GrossAmount   int64  `json:"gross_amount"`
	ProcessorFees int64  `json:"processor_fees"`
	PlatformFees  int64  `json:"platform_fees"`
	Refunds       int64  `json:"refunds"`
	Disputes      int64  `json:"disputes"`
	Adjustments   int64  `json:"adjustments"`
	NetAmount     int64  `json:"net_amount"`
	ActualAmount  int64  `json:"actual_amount"`
}

func (r *Reconciler) BuildReport(ctx context.Context, tenantID string, from, to time.Time) (*Report, error) {
	if tenantID == "" {
		return nil, contracts.Invalid("tenantId", "required")
	}

	summaries, err := r.Summaries.ListByTenant(tenantID)
	if err != nil {
		return nil, err
	}

	report := &Report{TenantID: tenantID}
	for _, s := range summaries {
		if s.PeriodEnd.Before(from) || s.PeriodStart.After(to) {
			continue
		}
		report.Payouts++
		if s.Reconciled {
			report.Reconciled++
		}
		report.GrossAmount += s.GrossAmount
		report.ProcessorFees += s.ProcessorFees
		report.PlatformFees += s.PlatformFees
		report.Refunds += s.Refunds
		report.Disputes += s.Disputes
		report.Adjustments += s.Adjustments
		report.NetAmount += s.NetAmount
		report.ActualAmount += s.ActualAmount
	}
	return report, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
