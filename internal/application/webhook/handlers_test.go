package webhook_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appCheckout "github.com/orkesta-pay/settlement-go/internal/application/checkout"
	"github.com/orkesta-pay/settlement-go/internal/application/fees"
	appWebhook "github.com/orkesta-pay/settlement-go/internal/application/webhook"
	"github.com/orkesta-pay/settlement-go/internal/domain/account"
	domainCheckout "github.com/orkesta-pay/settlement-go/internal/domain/checkout"
	"github.com/orkesta-pay/settlement-go/internal/domain/ledger"
	"github.com/orkesta-pay/settlement-go/internal/domain/payout"
	domainWebhook "github.com/orkesta-pay/settlement-go/internal/domain/webhook"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/persistence/inmemory"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/processor"
)

type handlerFixture struct {
	handlers *appWebhook.Handlers
	accounts *inmemory.AccountRepository
	intents  *inmemory.CheckoutRepository
	ledger   *inmemory.LedgerRepository
	payouts  *inmemory.PayoutRepository
	now      time.Time
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	accounts := inmemory.NewAccountRepository()
	intents := inmemory.NewCheckoutRepository()
	ledgerRepo := inmemory.NewLedgerRepository()
	payouts := inmemory.NewPayoutRepository()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := accounts.Save(&account.ConnectedAccount{
		AccountID:          "acct_1",
		TenantID:           "tenant-1",
		Mode:               account.ModeDestination,
		FeePolicy:          account.FeePolicy{PercentBps: 80, Fixed: 300},
		OnboardingComplete: true,
		Capabilities:       []account.PaymentMethod{account.MethodCard},
	})
	require.NoError(t, err)

	checkouts := &appCheckout.Service{
		Accounts:  accounts,
		Intents:   intents,
		Fees:      fees.NewCalculator(),
		Processor: processor.NewFakeClient(),
		Logger:    &noopLogger{},
		Metrics:   &metrics.Counters{},
		Now:       func() time.Time { return now },
	}

	return &handlerFixture{
		handlers: &appWebhook.Handlers{
			Checkouts: checkouts,
			Accounts:  accounts,
			Ledger:    ledgerRepo,
			Payouts:   payouts,
			Fees:      fees.NewCalculator(),
			Logger:    &noopLogger{},
			Now:       func() time.Time { return now },
		},
		accounts: accounts,
		intents:  intents,
		ledger:   ledgerRepo,
		payouts:  payouts,
		now:      now,
	}
}

func (f *handlerFixture) createIntent(t *testing.T) *domainCheckout.Intent {
	t.Helper()

	intent, _, err := f.handlers.Checkouts.CreateCheckout(
		context.Background(), "tenant-1", "order-1", 100_000, "MXN",
		[]account.PaymentMethod{account.MethodCard}, nil,
	)
	require.NoError(t, err)
	return intent
}

func event(eventType domainWebhook.EventType, objectJSON string) *domainWebhook.Event {
	payload := fmt.Appendf(nil, `{"id":"evt_1","type":%q,"data":{"object":%s}}`, eventType, objectJSON)
	return &domainWebhook.Event{
		EventID:  "evt_1",
		Type:     eventType,
		TenantID: "tenant-1",
		Payload:  payload,
	}
}

func TestHandlePaymentSucceeded_ShouldCompleteIntentAndAppendLedgerEntry(t *testing.T) {
	f := newHandlerFixture(t)
	intent := f.createIntent(t)

	e := event(domainWebhook.PaymentSucceeded,
		fmt.Sprintf(`{"id":"ch_1","amount":100000,"metadata":{"intent_id":%q}}`, intent.IntentID))

	require.NoError(t, f.handlers.HandlePaymentSucceeded(e))

	saved, err := f.intents.FindByID(intent.IntentID)
	require.NoError(t, err)
	require.Equal(t, domainCheckout.StatusComplete, saved.Status)
	require.Equal(t, "ch_1", saved.ChargeID)

	entries, err := f.ledger.FindInWindow("acct_1", f.now.Add(-time.Hour), f.now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ledger.EntryCharge, entries[0].Type)
	require.Equal(t, int64(100_000), entries[0].Amount)
	require.Equal(t, int64(3_900), entries[0].ProcessorFee)
	require.Equal(t, int64(1_100), entries[0].PlatformFee)
}

func TestHandlePaymentSucceeded_WhenRedelivered_ShouldBeNoOp(t *testing.T) {
	f := newHandlerFixture(t)
	intent := f.createIntent(t)

	e := event(domainWebhook.PaymentSucceeded,
		fmt.Sprintf(`{"id":"ch_1","amount":100000,"metadata":{"intent_id":%q}}`, intent.IntentID))

	require.NoError(t, f.handlers.HandlePaymentSucceeded(e))
	require.NoError(t, f.handlers.HandlePaymentSucceeded(e))

	entries, err := f.ledger.FindInWindow("acct_1", f.now.Add(-time.Hour), f.now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestHandlePaymentSucceeded_WhenIntentMetadataMissing_ShouldFail(t *testing.T) {
	f := newHandlerFixture(t)

	e := event(domainWebhook.PaymentSucceeded, `{"id":"ch_1","amount":100000,"metadata":{}}`)

	require.Error(t, f.handlers.HandlePaymentSucceeded(e))
}

func TestHandleChargeRefunded_ShouldAppendRefundEntry(t *testing.T) {
	f := newHandlerFixture(t)

	e := event(domainWebhook.ChargeRefunded,
		`{"id":"ch_1","amount":100000,"amount_refunded":40000,"currency":"MXN","metadata":{}}`)

	require.NoError(t, f.handlers.HandleChargeRefunded(e))

	entries, err := f.ledger.FindInWindow("acct_1", f.now.Add(-time.Hour), f.now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ledger.EntryRefund, entries[0].Type)
	require.Equal(t, int64(40_000), entries[0].Amount)
}

func TestHandlePayoutPaid_ShouldRecordPayoutWithSettlementWindow(t *testing.T) {
	f := newHandlerFixture(t)
	arrival := f.now.Add(-24 * time.Hour)

	e := event(domainWebhook.PayoutPaid,
		fmt.Sprintf(`{"id":"po_1","amount":95000,"currency":"MXN","arrival_date":%d,"metadata":{"account_id":"acct_1"}}`, arrival.Unix()))

	require.NoError(t, f.handlers.HandlePayoutPaid(e))

	saved, err := f.payouts.FindByID("po_1")
	require.NoError(t, err)
	require.Equal(t, payout.StatusPaid, saved.Status)
	require.Equal(t, int64(95_000), saved.Amount)
	require.Equal(t, saved.PeriodEnd.AddDate(0, 0, -7), saved.PeriodStart)
}

func TestHandlePayoutFailed_WhenPayoutUnknown_ShouldTolerate(t *testing.T) {
	f := newHandlerFixture(t)

	e := event(domainWebhook.PayoutFailed, `{"id":"po_missing"}`)

	require.NoError(t, f.handlers.HandlePayoutFailed(e))
}

func TestHandleAccountUpdated_ShouldRefreshOnboardingAndCapabilities(t *testing.T) {
	f := newHandlerFixture(t)

	e := event(domainWebhook.AccountUpdated,
		`{"id":"acct_1","details_submitted":true,"charges_enabled":false,"capabilities":{"card":true,"bank_transfer":true,"carrier_pigeon":true}}`)

	require.NoError(t, f.handlers.HandleAccountUpdated(e))

	acct, err := f.accounts.FindByID("acct_1")
	require.NoError(t, err)
	require.False(t, acct.OnboardingComplete)
	require.ElementsMatch(t,
		[]account.PaymentMethod{account.MethodCard, account.MethodBankTransfer},
		acct.Capabilities)
}
