package payout_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appPayout "github.com/orkesta-pay/settlement-go/internal/application/payout"
	"github.com/orkesta-pay/settlement-go/internal/domain/ledger"
	domainPayout "github.com/orkesta-pay/settlement-go/internal/domain/payout"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/persistence/inmemory"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/processor"
)

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

type reconcilerFixture struct {
	reconciler *appPayout.Reconciler
	payouts    *inmemory.PayoutRepository
	summaries  *inmemory.SummaryRepository
	ledger     *inmemory.LedgerRepository
	client     *processor.FakeClient
	now        time.Time
}

func newReconcilerFixture() *reconcilerFixture {
	payouts := inmemory.NewPayoutRepository()
	summaries := inmemory.NewSummaryRepository()
	ledgerRepo := inmemory.NewLedgerRepository()
	client := processor.NewFakeClient()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	return &reconcilerFixture{
		reconciler: &appPayout.Reconciler{
			Payouts:   payouts,
			Summaries: summaries,
			Ledger:    ledgerRepo,
			Processor: client,
			Logger:    &noopLogger{},
			Metrics:   &metrics.Counters{},
			Now:       func() time.Time { return now },
		},
		payouts:   payouts,
		summaries: summaries,
		ledger:    ledgerRepo,
		client:    client,
		now:       now,
	}
}

func (f *reconcilerFixture) seedPayout(id string, actual int64) {
	f.payouts.Save(&domainPayout.Payout{
		PayoutID:    id,
		TenantID:    "tenant-1",
		AccountID:   "acct_1",
		Amount:      actual,
		Currency:    "MXN",
		Status:      domainPayout.StatusPaid,
		PeriodStart: f.now.AddDate(0, 0, -7),
		PeriodEnd:   f.now,
		ArrivalDate: f.now,
	})
}

func (f *reconcilerFixture) seedEntry(entryType ledger.EntryType, amount, processorFee, platformFee int64) {
	f.ledger.Append(&ledger.Entry{
		EntryID:      fmt.Sprintf("le_%s_%d", entryType, amount),
		TenantID:     "tenant-1",
		AccountID:    "acct_1",
		Type:         entryType,
		Amount:       amount,
		ProcessorFee: processorFee,
		PlatformFee:  platformFee,
		Currency:     "MXN",
		SettledAt:    f.now.AddDate(0, 0, -1),
		CreatedAt:    f.now.AddDate(0, 0, -1),
	})
}

func TestReconcile_ShouldComputeNetFromLedgerComponents(t *testing.T) {
	f := newReconcilerFixture()
	f.seedEntry(ledger.EntryCharge, 200_000, 7_500, 5_000)
	f.seedEntry(ledger.EntryRefund, 10_000, 0, 0)
	f.seedEntry(ledger.EntryDispute, 20_000, 0, 0)
	f.seedEntry(ledger.EntryAdjustment, 2_500, 0, 0)

	// net = 200000 - 7500 - 5000 - 10000 - 20000 + 2500 = 160000
	f.seedPayout("po_1", 160_000)

	summary, err := f.reconciler.Reconcile(context.Background(), "po_1")

	require.NoError(t, err)
	require.Equal(t, int64(200_000), summary.GrossAmount)
	require.Equal(t, int64(7_500), summary.ProcessorFees)
	require.Equal(t, int64(5_000), summary.PlatformFees)
	require.Equal(t, int64(10_000), summary.Refunds)
	require.Equal(t, int64(20_000), summary.Disputes)
	require.Equal(t, int64(2_500), summary.Adjustments)
	require.Equal(t, int64(160_000), summary.NetAmount)
	require.Equal(t, int64(0), summary.Diff)
	require.True(t, summary.Reconciled)
}

func TestReconcile_WhenDiffWithinTolerance_ShouldReconcile(t *testing.T) {
	f := newReconcilerFixture()
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)
	// net = 95000; actual off by exactly the default tolerance.
	f.seedPayout("po_1", 95_000-100)

	summary, err := f.reconciler.Reconcile(context.Background(), "po_1")

	require.NoError(t, err)
	require.Equal(t, int64(100), summary.Diff)
	require.True(t, summary.Reconciled)
}

func TestReconcile_WhenDiffExceedsTolerance_ShouldFlagDiscrepancy(t *testing.T) {
	f := newReconcilerFixture()
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)
	f.seedPayout("po_1", 95_000+101)

	summary, err := f.reconciler.Reconcile(context.Background(), "po_1")

	require.NoError(t, err)
	require.Equal(t, int64(-101), summary.Diff)
	require.False(t, summary.Reconciled)

	discrepancies, err := f.reconciler.Discrepancies(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	require.Equal(t, "po_1", discrepancies[0].PayoutID)
}

func TestReconcile_WhenToleranceConfigured_ShouldUseIt(t *testing.T) {
	f := newReconcilerFixture()
	f.reconciler.Tolerance = 500
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)
	f.seedPayout("po_1", 95_000-400)

	summary, err := f.reconciler.Reconcile(context.Background(), "po_1")

	require.NoError(t, err)
	require.True(t, summary.Reconciled)
}

func TestReconcile_ShouldIgnoreEntriesOutsideWindow(t *testing.T) {
	f := newReconcilerFixture()
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)

	f.ledger.Append(&ledger.Entry{
		EntryID:   "le_old",
		TenantID:  "tenant-1",
		AccountID: "acct_1",
		Type:      ledger.EntryCharge,
		Amount:    999_999,
		SettledAt: f.now.AddDate(0, 0, -30),
	})

	f.seedPayout("po_1", 95_000)

	summary, err := f.reconciler.Reconcile(context.Background(), "po_1")

	require.NoError(t, err)
	require.Equal(t, int64(100_000), summary.GrossAmount)
}

func TestReconcile_WhenRunTwice_ShouldUpsertSingleSummary(t *testing.T) {
	f := newReconcilerFixture()
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)
	f.seedPayout("po_1", 95_000)

	_, err := f.reconciler.Reconcile(context.Background(), "po_1")
	require.NoError(t, err)

	f.seedEntry(ledger.EntryCharge, 50_000, 2_100, 700)
	second, err := f.reconciler.Reconcile(context.Background(), "po_1")
	require.NoError(t, err)
	require.Equal(t, int64(150_000), second.GrossAmount)

	all, err := f.summaries.ListByTenant("tenant-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestReconcile_WhenPayoutUnknownLocally_ShouldFetchFromProcessor(t *testing.T) {
	f := newReconcilerFixture()
	f.client.AddPayout("po_remote", "acct_1", 95_000, f.now)
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)

	summary, err := f.reconciler.Reconcile(context.Background(), "po_remote")

	require.NoError(t, err)
	require.Equal(t, int64(95_000), summary.ActualAmount)
	require.True(t, summary.Reconciled)

	fetched, err := f.payouts.FindByID("po_remote")
	require.NoError(t, err)
	require.Equal(t, "acct_1", fetched.AccountID)
}

func TestReconcile_WhenPayoutUnknownEverywhere_ShouldFail(t *testing.T) {
	f := newReconcilerFixture()

	_, err := f.reconciler.Reconcile(context.Background(), "po_missing")
	require.Error(t, err)
}

func TestDiscrepancies_ShouldSortByAbsoluteDiffDescending(t *testing.T) {
	f := newReconcilerFixture()
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)

	f.seedPayout("po_small", 95_000+500)
	f.seedPayout("po_large", 95_000-9_000)
	f.seedPayout("po_medium", 95_000+2_000)

	for _, id := range []string{"po_small", "po_large", "po_medium"} {
		_, err := f.reconciler.Reconcile(context.Background(), id)
		require.NoError(t, err)
	}

	discrepancies, err := f.reconciler.Discrepancies(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, discrepancies, 3)
	require.Equal(t, "po_large", discrepancies[0].PayoutID)
	require.Equal(t, "po_medium", discrepancies[1].PayoutID)
	require.Equal(t, "po_small", discrepancies[2].PayoutID)
}

func TestBuildReport_ShouldAggregateSummariesInRange(t *testing.T) {
	f := newReconcilerFixture()
	f.seedEntry(ledger.EntryCharge, 100_000, 3_900, 1_100)
	f.seedPayout("po_1", 95_000)
	f.seedPayout("po_2", 95_000+5_000)

	for _, id := range []string{"po_1", "po_2"} {
		_, err := f.reconciler.Reconcile(context.Background(), id)
		require.NoError(t, err)
	}

	report, err := f.reconciler.BuildReport(
		context.Background(), "tenant-1",
		f.now.AddDate(0, 0, -10), f.now,
	)

	require.NoError(t, err)
	require.Equal(t, 2, report.Payouts)
	require.Equal(t, 1, report.Reconciled)
	require.Equal(t, int64(200_000), report.GrossAmount)
	require.Equal(t, int64(190_000), report.NetAmount)
}
