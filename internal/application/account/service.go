package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orkesta-pay/settlement-go/internal/application/contracts"
	domainAccount "github.com/orkesta-pay/settlement-go/internal/domain/account"
	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
)

// Service manages connected-account onboarding state. Capability and
// onboarding updates normally arrive through account.updated events; the
// service covers registration and direct reads.
type Service struct {
	Accounts domainAccount.Repository
	Logger   logging.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RegisterParams carries everything needed to enroll a tenant's account.
type RegisterParams struct {
	TenantID     string
	Mode         domainAccount.SettlementMode
	FeePolicy    domainAccount.FeePolicy
	Capabilities []domainAccount.PaymentMethod
}

// Register enrolls a connected account for a tenant. The account starts
// with onboarding incomplete; the processor's account.updated event flips
// it once the merchant finishes.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*domainAccount.ConnectedAccount, error) {
	if params.TenantID == "" {
		return nil, contracts.Invalid("tenantId", "required")
	}
	if !params.Mode.Valid() {
		return nil, contracts.Invalid("mode", "unsupported settlement mode "+string(params.Mode))
	}
	if params.FeePolicy.PercentBps < 0 || params.FeePolicy.Fixed < 0 || params.FeePolicy.MinFee < 0 {
		return nil, contracts.Invalid("feePolicy", "components must not be negative")
	}
	if params.FeePolicy.MaxFee > 0 && params.FeePolicy.MaxFee < params.FeePolicy.MinFee {
		return nil, contracts.Invalid("feePolicy", "max fee below min fee")
	}
	for _, m := range params.Capabilities {
		if !m.Valid() {
			return nil, contracts.Invalid("capabilities", "unknown payment method "+string(m))
		}
	}

	now := s.now()
	acct := &domainAccount.ConnectedAccount{
		AccountID:    "acct_" + uuid.NewString(),
		TenantID:     params.TenantID,
		Mode:         params.Mode,
		FeePolicy:    params.FeePolicy,
		Capabilities: params.Capabilities,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Accounts.Save(acct); err != nil {
		return nil, err
	}

	s.Logger.Info("connected account registered", map[string]any{
		"account_id": acct.AccountID,
		"tenant_id":  acct.TenantID,
		"mode":       string(acct.Mode),
	})

	return acct, nil
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, accountID string) (*domainAccount.ConnectedAccount, error) {
	return s.Accounts.FindByID(accountID)
}
