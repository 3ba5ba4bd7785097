package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	appCheckout "github.com/orkesta-pay/settlement-go/internal/application/checkout"
	"github.com/orkesta-pay/settlement-go/internal/application/fees"
	"github.com/orkesta-pay/settlement-go/internal/domain/account"
	"github.com/orkesta-pay/settlement-go/internal/domain/ledger"
	"github.com/orkesta-pay/settlement-go/internal/domain/payout"
	domainWebhook "github.com/orkesta-pay/settlement-go/internal/domain/webhook"
	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
)

// payoutLookbackDays approximates the settlement window a bank payout
// covers when the processor does not report one.
const payoutLookbackDays = 7

// Handlers owns the default side effects for processor events. Everything
// it touches goes through injected repositories.
type Handlers struct {
	Checkouts *appCheckout.Service
	Accounts  account.Repository
	Ledger    ledger.Repository
	Payouts   payout.Repository
	Fees      *fees.Calculator
	Logger    logging.Logger
	Now       func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// RegisterAll wires every default handler into the registry.
func (h *Handlers) RegisterAll(r *Registry) {
	r.Register(domainWebhook.PaymentSucceeded, h.HandlePaymentSucceeded)
	r.Register(domainWebhook.PaymentFailed, h.HandlePaymentFailed)
	r.Register(domainWebhook.ChargeRefunded, h.HandleChargeRefunded)
	r.Register(domainWebhook.DisputeCreated, h.HandleDisputeCreated)
	r.Register(domainWebhook.PayoutPaid, h.HandlePayoutPaid)
	r.Register(domainWebhook.PayoutFailed, h.HandlePayoutFailed)
	r.Register(domainWebhook.AccountUpdated, h.HandleAccountUpdated)
}

type chargeObject struct {
	ID             string            `json:"id"`
	Amount         int64             `json:"amount"`
	AmountRefunded int64             `json:"amount_refunded"`
	Currency       string            `json:"currency"`
	Metadata       map[string]string `json:"metadata"`
}

func parseObject[T any](e *domainWebhook.Event) (T, error) {
	var env struct {
		Data struct {
			Object T `json:"object"`
		} `json:"data"`
	}
	err := json.Unmarshal(e.Payload, &env)
	return env.Data.Object, err
}

// HandlePaymentSucceeded completes the originating intent and appends the
// charge to the settlement ledger with both fee components.
func (h *Handlers) HandlePaymentSucceeded(e *domainWebhook.Event) error {
	obj, err := parseObject[chargeObject](e)
	if err != nil {
		return err
	}

	intentID := obj.Metadata["intent_id"]
	if intentID == "" {
		return errors.New("payment event missing intent_id metadata")
	}

	intent, err := h.Checkouts.GetIntent(context.Background(), intentID)
	if err != nil {
		return err
	}

	if err := h.Checkouts.MarkComplete(context.Background(), intentID, obj.ID); err != nil {
		// Redelivered completion for an already-complete intent is a no-op.
		if errors.Is(err, appCheckout.ErrIntentComplete) {
			return nil
		}
		return err
	}

	processorFee, err := h.Fees.ProcessorFee(intent.Amount, intent.Methods[0])
	if err != nil {
		return err
	}

	entry := &ledger.Entry{
		EntryID:      "le_" + uuid.NewString(),
		TenantID:     intent.TenantID,
		AccountID:    intent.DestinationID,
		Type:         ledger.EntryCharge,
		Amount:       intent.Amount,
		ProcessorFee: processorFee,
		PlatformFee:  intent.PlatformFee,
		Currency:     intent.Currency,
		SourceID:     obj.ID,
		SettledAt:    h.now(),
		CreatedAt:    h.now(),
	}
	if err := h.Ledger.Append(entry); err != nil {
		return err
	}

	h.Logger.Info("payment settled", map[string]any{
		"intent_id": intentID,
		"charge_id": obj.ID,
		"amount":    intent.Amount,
	})
	return nil
}

func (h *Handlers) HandlePaymentFailed(e *domainWebhook.Event) error {
	obj, err := parseObject[chargeObject](e)
	if err != nil {
		return err
	}

	h.Logger.Info("payment failed", map[string]any{
		"object_id": obj.ID,
		"tenant_id": e.TenantID,
	})
	return nil
}

// HandleChargeRefunded appends a refund entry against the charge's
// account so reconciliation sees it.
func (h *Handlers) HandleChargeRefunded(e *domainWebhook.Event) error {
	obj, err := parseObject[chargeObject](e)
	if err != nil {
		return err
	}

	accountID, err := h.resolveAccount(obj.Metadata, e.TenantID)
	if err != nil {
		return err
	}

	amount := obj.AmountRefunded
	if amount == 0 {
		amount = obj.Amount
	}

	return h.Ledger.Append(&ledger.Entry{
		EntryID:   "le_" + uuid.NewString(),
		TenantID:  e.TenantID,
		AccountID: accountID,
		Type:      ledger.EntryRefund,
		Amount:    amount,
		Currency:  obj.Currency,
		SourceID:  obj.ID,
		SettledAt: h.now(),
		CreatedAt: h.now(),
	})
}

func (h *Handlers) HandleDisputeCreated(e *domainWebhook.Event) error {
	obj, err := parseObject[chargeObject](e)
	if err != nil {
		return err
	}

	accountID, err := h.resolveAccount(obj.Metadata, e.TenantID)
	if err != nil {
		return err
	}

	h.Logger.Error("dispute opened", map[string]any{
		"object_id": obj.ID,
		"tenant_id": e.TenantID,
		"amount":    obj.Amount,
	})

	return h.Ledger.Append(&ledger.Entry{
		EntryID:   "le_" + uuid.NewString(),
		TenantID:  e.TenantID,
		AccountID: accountID,
		Type:      ledger.EntryDispute,
		Amount:    obj.Amount,
		Currency:  obj.Currency,
		SourceID:  obj.ID,
		SettledAt: h.now(),
		CreatedAt: h.now(),
	})
}

type payoutObject struct {
	ID          string            `json:"id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	ArrivalDate int64             `json:"arrival_date"`
	Destination string            `json:"destination"`
	Metadata    map[string]string `json:"metadata"`
}

// HandlePayoutPaid records the disbursement so the reconciler can compare
// it against the ledger later.
func (h *Handlers) HandlePayoutPaid(e *domainWebhook.Event) error {
	obj, err := parseObject[payoutObject](e)
	if err != nil {
		return err
	}

	accountID, err := h.resolveAccount(obj.Metadata, e.TenantID)
	if err != nil {
		return err
	}

	arrival := time.Unix(obj.ArrivalDate, 0)
	return h.Payouts.Save(&payout.Payout{
		PayoutID:    obj.ID,
		TenantID:    e.TenantID,
		AccountID:   accountID,
		Amount:      obj.Amount,
		Currency:    obj.Currency,
		Status:      payout.StatusPaid,
		PeriodStart: arrival.AddDate(0, 0, -payoutLookbackDays),
		PeriodEnd:   arrival,
		ArrivalDate: arrival,
		CreatedAt:   h.now(),
	})
}

func (h *Handlers) HandlePayoutFailed(e *domainWebhook.Event) error {
	obj, err := parseObject[payoutObject](e)
	if err != nil {
		return err
	}

	h.Logger.Error("payout failed", map[string]any{
		"payout_id": obj.ID,
		"tenant_id": e.TenantID,
	})

	err = h.Payouts.UpdateStatus(obj.ID, payout.StatusFailed)
	if err != nil && !errors.Is(err, payout.ErrNotFound) {
		return err
	}
	return nil
}

type accountObject struct {
	ID               string          `json:"id"`
	DetailsSubmitted bool            `json:"details_submitted"`
	ChargesEnabled   bool            `json:"charges_enabled"`
	Capabilities     map[string]bool `json:"capabilities"`
}

// HandleAccountUpdated refreshes onboarding state and the active
// capability set from the processor's view of the account.
func (h *Handlers) HandleAccountUpdated(e *domainWebhook.Event) error {
	obj, err := parseObject[accountObject](e)
	if err != nil {
		return err
	}

	acct, err := h.Accounts.FindByID(obj.ID)
	if err != nil {
		return err
	}

	acct.OnboardingComplete = obj.DetailsSubmitted && obj.ChargesEnabled
	if len(obj.Capabilities) > 0 {
		var caps []account.PaymentMethod
		for name, active := range obj.Capabilities {
			m := account.PaymentMethod(name)
			if active && m.Valid() {
				caps = append(caps, m)
			}
		}
		acct.Capabilities = caps
	}
	acct.UpdatedAt = h.now()

	return h.Accounts.Update(acct)
}

func (h *Handlers) resolveAccount(metadata map[string]string, tenantID string) (string, error) {
	if id := metadata["account_id"]; id != "" {
		return id, nil
	}

	acct, err := h.Accounts.FindByTenant(tenantID)
	if err != nil {
		return "", err
	}
	return acct.AccountID, nil
}
