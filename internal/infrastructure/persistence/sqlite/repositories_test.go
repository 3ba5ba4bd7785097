package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/orkesta-pay/settlement-go/internal/domain/account"
	"github.com/orkesta-pay/settlement-go/internal/domain/checkout"
	"github.com/orkesta-pay/settlement-go/internal/domain/ledger"
	"github.com/orkesta-pay/settlement-go/internal/domain/payout"
	"github.com/orkesta-pay/settlement-go/internal/domain/transfer"
	"github.com/orkesta-pay/settlement-go/internal/domain/webhook"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/persistence/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlite.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return db
}

func testTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestAccountRepository_ShouldRoundTripPolicyAndCapabilities(t *testing.T) {
	repo := sqlite.NewAccountRepository(setupTestDB(t))
	now := testTime()

	err := repo.Save(&account.ConnectedAccount{
		AccountID:          "acct_1",
		TenantID:           "tenant-1",
		Mode:               account.ModeDestination,
		FeePolicy:          account.FeePolicy{PercentBps: 80, Fixed: 300, MinFee: 500, MaxFee: 10_000},
		OnboardingComplete: true,
		Capabilities:       []account.PaymentMethod{account.MethodCard, account.MethodVoucher},
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	require.NoError(t, err)

	got, err := repo.FindByTenant("tenant-1")
	require.NoError(t, err)
	require.Equal(t, "acct_1", got.AccountID)
	require.Equal(t, account.ModeDestination, got.Mode)
	require.Equal(t, int64(80), got.FeePolicy.PercentBps)
	require.Equal(t, int64(10_000), got.FeePolicy.MaxFee)
	require.True(t, got.OnboardingComplete)
	require.Equal(t, []account.PaymentMethod{account.MethodCard, account.MethodVoucher}, got.Capabilities)
}

func TestAccountRepository_WhenMissing_ShouldReturnNotFound(t *testing.T) {
	repo := sqlite.NewAccountRepository(setupTestDB(t))

	_, err := repo.FindByID("acct_missing")
	require.ErrorIs(t, err, account.ErrNotFound)

	err = repo.Update(&account.ConnectedAccount{AccountID: "acct_missing"})
	require.ErrorIs(t, err, account.ErrNotFound)
}

func TestCheckoutRepository_ShouldFindByChargeAfterCompletion(t *testing.T) {
	repo := sqlite.NewCheckoutRepository(setupTestDB(t))
	now := testTime()

	intent := &checkout.Intent{
		IntentID:      "ci_1",
		TenantID:      "tenant-1",
		OrderID:       "order-1",
		Amount:        100_000,
		Currency:      "MXN",
		Methods:       []account.PaymentMethod{account.MethodCard},
		Mode:          account.ModeDestination,
		PlatformFee:   1_100,
		DestinationID: "acct_1",
		CheckoutURL:   "https://checkout.test/ci_1",
		Status:        checkout.StatusPending,
		ExpiresAt:     now.Add(time.Hour),
		Metadata:      map[string]string{"intent_id": "ci_1"},
		CreatedAt:     now,
	}
	require.NoError(t, repo.Save(intent))

	intent.Status = checkout.StatusComplete
	intent.ChargeID = "ch_1"
	intent.CompletedAt = now.Add(time.Minute)
	require.NoError(t, repo.Save(intent))

	got, err := repo.FindByChargeID("ch_1")
	require.NoError(t, err)
	require.Equal(t, "ci_1", got.IntentID)
	require.Equal(t, checkout.StatusComplete, got.Status)
	require.Equal(t, []account.PaymentMethod{account.MethodCard}, got.Methods)
	require.Equal(t, "ci_1", got.Metadata["intent_id"])
}

func TestCheckoutRepository_MarkExpired_ShouldOnlyTouchStalePending(t *testing.T) {
	repo := sqlite.NewCheckoutRepository(setupTestDB(t))
	now := testTime()

	stale := &checkout.Intent{
		IntentID: "ci_stale", TenantID: "t", Amount: 1,
		Methods: []account.PaymentMethod{account.MethodCard},
		Status:  checkout.StatusPending, ExpiresAt: now.Add(-time.Minute), CreatedAt: now,
	}
	fresh := &checkout.Intent{
		IntentID: "ci_fresh", TenantID: "t", Amount: 1,
		Methods: []account.PaymentMethod{account.MethodCard},
		Status:  checkout.StatusPending, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	require.NoError(t, repo.Save(stale))
	require.NoError(t, repo.Save(fresh))

	swept, err := repo.MarkExpired(now)
	require.NoError(t, err)
	require.Equal(t, 1, swept)

	got, err := repo.FindByID("ci_stale")
	require.NoError(t, err)
	require.Equal(t, checkout.StatusExpired, got.Status)

	got, err = repo.FindByID("ci_fresh")
	require.NoError(t, err)
	require.Equal(t, checkout.StatusPending, got.Status)
}

func TestWebhookRepository_SaveIfNotExist_ShouldInsertOnlyOnce(t *testing.T) {
	repo := sqlite.NewWebhookRepository(setupTestDB(t))
	now := testTime()

	e := &webhook.Event{
		EventID:        "evt_1",
		Type:           webhook.PaymentSucceeded,
		TenantID:       "tenant-1",
		Payload:        []byte(`{"id":"evt_1"}`),
		IdempotencyKey: "evt_1-abc",
		ReceivedAt:     now,
	}

	inserted, err := repo.SaveIfNotExist(e)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.SaveIfNotExist(e)
	require.NoError(t, err)
	require.False(t, inserted)
}

func TestWebhookRepository_FindFailed_ShouldListUnprocessedAttempts(t *testing.T) {
	repo := sqlite.NewWebhookRepository(setupTestDB(t))
	now := testTime()

	failed := &webhook.Event{
		EventID: "evt_failed", Type: webhook.PaymentSucceeded, TenantID: "t",
		Payload: []byte(`{}`), IdempotencyKey: "k1", ReceivedAt: now,
	}
	ok := &webhook.Event{
		EventID: "evt_ok", Type: webhook.PaymentSucceeded, TenantID: "t",
		Payload: []byte(`{}`), IdempotencyKey: "k2", ReceivedAt: now,
	}

	for _, e := range []*webhook.Event{failed, ok} {
		inserted, err := repo.SaveIfNotExist(e)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	failed.Attempts = 1
	failed.LastError = "handler exploded"
	require.NoError(t, repo.Update(failed))

	ok.Attempts = 1
	ok.Processed = true
	ok.ProcessedAt = now
	require.NoError(t, repo.Update(ok))

	got, err := repo.FindFailed(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "evt_failed", got[0].EventID)
	require.Equal(t, "handler exploded", got[0].LastError)
}

func TestTransferRepository_ShouldTrackReversals(t *testing.T) {
	repo := sqlite.NewTransferRepository(setupTestDB(t))
	now := testTime()

	instruction := &transfer.Instruction{
		InstructionID:  "tr_1",
		TenantID:       "tenant-1",
		AccountID:      "acct_1",
		Amount:         10_000,
		Currency:       "MXN",
		SourceChargeID: "ch_1",
		GroupID:        "trg_1",
		Status:         transfer.StatusPending,
		CreatedAt:      now,
	}
	require.NoError(t, repo.Save(instruction))

	require.NoError(t, repo.SaveReversal(&transfer.Reversal{
		ReversalID: "trr_1", InstructionID: "tr_1", Amount: 4_000, Reason: "partial", CreatedAt: now,
	}))

	instruction.ReversedAmount = 4_000
	instruction.Status = transfer.StatusPartiallyReversed
	require.NoError(t, repo.Update(instruction))

	got, err := repo.FindByID("tr_1")
	require.NoError(t, err)
	require.Equal(t, transfer.StatusPartiallyReversed, got.Status)
	require.Equal(t, int64(6_000), got.Remaining())

	reversals, err := repo.ReversalsFor("tr_1")
	require.NoError(t, err)
	require.Len(t, reversals, 1)
	require.Equal(t, int64(4_000), reversals[0].Amount)
}

func TestTransferRepository_ListByTenant_ShouldFilterByStatus(t *testing.T) {
	repo := sqlite.NewTransferRepository(setupTestDB(t))
	now := testTime()

	for i, status := range []transfer.Status{transfer.StatusPending, transfer.StatusReversed} {
		require.NoError(t, repo.Save(&transfer.Instruction{
			InstructionID: "tr_" + string(rune('a'+i)),
			TenantID:      "tenant-1",
			AccountID:     "acct_1",
			Amount:        1_000,
			Status:        status,
			CreatedAt:     now.Add(time.Duration(i) * time.Minute),
		}))
	}

	pending, err := repo.ListByTenant("tenant-1", transfer.StatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	all, err := repo.ListByTenant("tenant-1", "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSummaryRepository_ListUnreconciled_ShouldOrderByAbsoluteDiff(t *testing.T) {
	repo := sqlite.NewSummaryRepository(setupTestDB(t))
	now := testTime()

	seed := func(id string, diff int64, reconciled bool) {
		require.NoError(t, repo.Upsert(&payout.Summary{
			PayoutID:     id,
			TenantID:     "tenant-1",
			AccountID:    "acct_1",
			PeriodStart:  now.AddDate(0, 0, -7),
			PeriodEnd:    now,
			Diff:         diff,
			Reconciled:   reconciled,
			ReconciledAt: now,
			CreatedAt:    now,
		}))
	}
	seed("po_ok", 10, true)
	seed("po_small", -200, false)
	seed("po_large", 9_000, false)

	got, err := repo.ListUnreconciled("tenant-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "po_large", got[0].PayoutID)
	require.Equal(t, "po_small", got[1].PayoutID)
}

func TestSummaryRepository_Upsert_ShouldReplaceExistingRow(t *testing.T) {
	repo := sqlite.NewSummaryRepository(setupTestDB(t))
	now := testTime()

	s := &payout.Summary{
		PayoutID: "po_1", TenantID: "tenant-1", AccountID: "acct_1",
		PeriodStart: now.AddDate(0, 0, -7), PeriodEnd: now,
		GrossAmount: 100_000, NetAmount: 95_000, ActualAmount: 95_000,
		Reconciled: true, ReconciledAt: now, CreatedAt: now,
	}
	require.NoError(t, repo.Upsert(s))

	s.GrossAmount = 150_000
	require.NoError(t, repo.Upsert(s))

	got, err := repo.FindByPayoutID("po_1")
	require.NoError(t, err)
	require.Equal(t, int64(150_000), got.GrossAmount)

	all, err := repo.ListByTenant("tenant-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestLedgerRepository_FindInWindow_ShouldBoundBySettlement(t *testing.T) {
	repo := sqlite.NewLedgerRepository(setupTestDB(t))
	now := testTime()

	seed := func(id string, settledAt time.Time) {
		require.NoError(t, repo.Append(&ledger.Entry{
			EntryID:   id,
			TenantID:  "tenant-1",
			AccountID: "acct_1",
			Type:      ledger.EntryCharge,
			Amount:    1_000,
			Currency:  "MXN",
			SettledAt: settledAt,
			CreatedAt: settledAt,
		}))
	}
	seed("le_in", now.AddDate(0, 0, -1))
	seed("le_out", now.AddDate(0, 0, -30))

	got, err := repo.FindInWindow("acct_1", now.AddDate(0, 0, -7), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "le_in", got[0].EntryID)
}

func TestPayoutRepository_UpdateStatus_ShouldPersistTransition(t *testing.T) {
	repo := sqlite.NewPayoutRepository(setupTestDB(t))
	now := testTime()

	require.NoError(t, repo.Save(&payout.Payout{
		PayoutID:    "po_1",
		TenantID:    "tenant-1",
		AccountID:   "acct_1",
		Amount:      95_000,
		Currency:    "MXN",
		Status:      payout.StatusPaid,
		PeriodStart: now.AddDate(0, 0, -7),
		PeriodEnd:   now,
		ArrivalDate: now,
		CreatedAt:   now,
	}))

	require.NoError(t, repo.UpdateStatus("po_1", payout.StatusFailed))

	got, err := repo.FindByID("po_1")
	require.NoError(t, err)
	require.Equal(t, payout.StatusFailed, got.Status)

	err = repo.UpdateStatus("po_missing", payout.StatusFailed)
	require.ErrorIs(t, err, payout.ErrNotFound)
}
