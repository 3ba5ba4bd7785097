package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orkesta-pay/settlement-go/internal/application/contracts"
	"github.com/orkesta-pay/settlement-go/internal/application/fees"
	"github.com/orkesta-pay/settlement-go/internal/domain/account"
	domainCheckout "github.com/orkesta-pay/settlement-go/internal/domain/checkout"
	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/processor"
)

var (
	ErrAccountNotReady = errors.New("connected account not ready")
	ErrIntentComplete  = errors.New("intent already complete")
	ErrIntentExpired   = errors.New("intent expired")
)

const DefaultIntentTTL = time.Hour

// Service routes a checkout into one of the three settlement topologies
// based on the connected account's configured mode.
type Service struct {
	Accounts  account.Repository
	Intents   domainCheckout.Repository
	Fees      *fees.Calculator
	Processor processor.Client
	Logger    logging.Logger
	Metrics   *metrics.Counters
	IntentTTL time.Duration
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ttl() time.Duration {
	if s.IntentTTL > 0 {
		return s.IntentTTL
	}
	return DefaultIntentTTL
}

// CreateCheckout validates the request against the tenant's connected
// account, computes the platform fee, creates the processor session with
// mode-specific settlement instructions, and persists the intent before
// returning it. The fee is fixed before the intent exists.
func (s *Service) CreateCheckout(ctx context.Context, tenantID, orderID string, amount int64, currency string, methods []account.PaymentMethod, metadata map[string]string) (*domainCheckout.Intent, *domainCheckout.FeeBreakdown, error) {
	if amount <= 0 {
		return nil, nil, contracts.Invalid("amount", "must be positive")
	}
	if len(methods) == 0 {
		return nil, nil, contracts.Invalid("methods", "at least one payment method required")
	}
	for _, m := range methods {
		if !m.Valid() {
			return nil, nil, contracts.Invalid("methods", "unknown payment method "+string(m))
		}
	}

	acct, err := s.Accounts.FindByTenant(tenantID)
	if err != nil {
		return nil, nil, err
	}
	if !acct.Mode.Valid() {
		return nil, nil, contracts.Invalid("mode", "unsupported settlement mode "+string(acct.Mode))
	}
	if acct.Disabled || !acct.OnboardingComplete {
		return nil, nil, ErrAccountNotReady
	}
	for _, m := range methods {
		if !acct.HasCapability(m) {
			return nil, nil, ErrAccountNotReady
		}
	}

	platformFee, err := s.Fees.Compute(amount, acct.FeePolicy)
	if err != nil {
		return nil, nil, err
	}
	processorFee, err := s.Fees.ProcessorFee(amount, methods[0])
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	intentID := "ci_" + uuid.NewString()
	expiresAt := now.Add(s.ttl())

	meta := map[string]string{
		"intent_id": intentID,
		"tenant_id": tenantID,
		"order_id":  orderID,
		"mode":      string(acct.Mode),
	}
	for k, v := range metadata {
		meta[k] = v
	}

	params := processor.SessionParams{
		TenantID:       tenantID,
		OrderID:        orderID,
		Amount:         amount,
		Currency:       currency,
		Methods:        methods,
		ApplicationFee: platformFee,
		ExpiresAt:      expiresAt,
		Metadata:       meta,
	}

	switch acct.Mode {
	case account.ModeOnBehalf:
		// Connected account absorbs processor fees; platform fee is a
		// separate deduction on the charge.
		params.OnBehalfOf = acct.AccountID
		params.Destination = acct.AccountID
	case account.ModeDestination:
		// Platform absorbs processor fees and forwards amount minus fee.
		params.Destination = acct.AccountID
		params.TransferAmount = amount - platformFee
	case account.ModeManaged:
		// Funds settle on the platform balance; later distribution goes
		// through the transfer splitter. No routing fields on the session.
		params.ApplicationFee = 0
	}

	session, err := s.Processor.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	intent := &domainCheckout.Intent{
		IntentID:      intentID,
		TenantID:      tenantID,
		OrderID:       orderID,
		Amount:        amount,
		Currency:      currency,
		Methods:       methods,
		Mode:          acct.Mode,
		PlatformFee:   platformFee,
		DestinationID: acct.AccountID,
		CheckoutURL:   session.CheckoutURL,
		Status:        domainCheckout.StatusPending,
		ExpiresAt:     expiresAt,
		Metadata:      meta,
		CreatedAt:     now,
	}

	if err := s.Intents.Save(intent); err != nil {
		return nil, nil, err
	}

	breakdown := &domainCheckout.FeeBreakdown{
		Amount:       amount,
		PlatformFee:  platformFee,
		ProcessorFee: processorFee,
		ConnectedNet: connectedNet(acct.Mode, amount, platformFee, processorFee),
	}

	s.Metrics.IncCheckoutsCreated()
	s.Logger.Info("checkout intent created", map[string]any{
		"intent_id":    intentID,
		"tenant_id":    tenantID,
		"mode":         string(acct.Mode),
		"amount":       amount,
		"platform_fee": platformFee,
	})

	return intent, breakdown, nil
}

func connectedNet(mode account.SettlementMode, amount, platformFee, processorFee int64) int64 {
	if mode == account.ModeOnBehalf {
		return amount - processorFee - platformFee
	}
	return amount - platformFee
}

// GetIntent returns the intent, enforcing expiry lazily: a pending intent
// read past its expiry comes back expired even before any sweep ran.
func (s *Service) GetIntent(ctx context.Context, intentID string) (*domainCheckout.Intent, error) {
	intent, err := s.Intents.FindByID(intentID)
	if err != nil {
		return nil, err
	}

	if intent.Expired(s.now()) {
		intent.Status = domainCheckout.StatusExpired
	}
	return intent, nil
}

// MarkComplete transitions a pending intent to complete. Called from the
// payment-succeeded webhook handler; complete intents are immutable.
func (s *Service) MarkComplete(ctx context.Context, intentID, chargeID string) error {
	intent, err := s.Intents.FindByID(intentID)
	if err != nil {
		return err
	}

	switch {
	case intent.Status == domainCheckout.StatusComplete:
		return ErrIntentComplete
	case intent.Expired(s.now()) || intent.Status == domainCheckout.StatusExpired:
		return ErrIntentExpired
	}

	intent.Status = domainCheckout.StatusComplete
	intent.ChargeID = chargeID
	intent.CompletedAt = s.now()
	return s.Intents.Save(intent)
}

// ExpireStale marks every pending intent past its window. Expiry is
// already enforced lazily on reads; the sweep only makes it explicit.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	return s.Intents.MarkExpired(s.now())
}
