package fees

import (
	"github.com/orkesta-pay/settlement-go/internal/application/contracts"
	"github.com/orkesta-pay/settlement-go/internal/domain/account"
)

// MethodFees is the processor's cost per acquiring channel. Limit caps the
// chargeable amount (0 means unlimited).
type MethodFees struct {
	PercentBps int64
	Fixed      int64
	Limit      int64
}

// Schedule holds processor fees per payment method, in minor units.
type Schedule struct {
	Card         MethodFees
	Voucher      MethodFees
	BankTransfer MethodFees
}

// DefaultSchedule mirrors the MX processor rate card: 3.6% + $3 for cards
// and vouchers (vouchers capped at $10,000), 2.5% + $5 for bank transfers.
func DefaultSchedule() Schedule {
	return Schedule{
		Card:         MethodFees{PercentBps: 360, Fixed: 300},
		Voucher:      MethodFees{PercentBps: 360, Fixed: 300, Limit: 1_000_000},
		BankTransfer: MethodFees{PercentBps: 250, Fixed: 500},
	}
}

// Calculator computes platform and processor fees. All methods are
// deterministic and side-effect-free.
type Calculator struct {
	Schedule Schedule
}

func NewCalculator() *Calculator {
	return &Calculator{Schedule: DefaultSchedule()}
}

// Compute applies the fee policy to an amount:
// clamp(amount*bps/10000 + fixed, floor, ceiling).
func (c *Calculator) Compute(amount int64, policy account.FeePolicy) (int64, error) {
	if amount <= 0 {
		return 0, contracts.Invalid("amount", "must be positive")
	}
	if policy.PercentBps < 0 || policy.Fixed < 0 {
		return 0, contracts.Invalid("fee_policy", "percentage and fixed components must be non-negative")
	}
	if policy.MaxFee > 0 && policy.MinFee > policy.MaxFee {
		return 0, contracts.Invalid("fee_policy", "min fee exceeds max fee")
	}

	fee := amount*policy.PercentBps/10_000 + policy.Fixed

	if fee < policy.MinFee {
		fee = policy.MinFee
	}
	if policy.MaxFee > 0 && fee > policy.MaxFee {
		fee = policy.MaxFee
	}

	return fee, nil
}

// ProcessorFee returns the acquiring cost for the method.
func (c *Calculator) ProcessorFee(amount int64, method account.PaymentMethod) (int64, error) {
	if amount <= 0 {
		return 0, contracts.Invalid("amount", "must be positive")
	}

	var mf MethodFees
	switch method {
	case account.MethodCard:
		mf = c.Schedule.Card
	case account.MethodVoucher:
		mf = c.Schedule.Voucher
	case account.MethodBankTransfer:
		mf = c.Schedule.BankTransfer
	default:
		return 0, contracts.Invalid("method", "unknown payment method")
	}

	if mf.Limit > 0 && amount > mf.Limit {
		return 0, contracts.Invalid("amount", "exceeds method limit")
	}

	return amount*mf.PercentBps/10_000 + mf.Fixed, nil
}

// FeeBearer names who absorbs the processor fee in a settlement mode.
type FeeBearer string

const (
	BearerConnected FeeBearer = "connected_account"
	BearerPlatform  FeeBearer = "platform"
)

// ModeEconomics describes how one settlement mode distributes a charge.
// ConnectedNet + PlatformNet + processor fee always equals the amount.
type ModeEconomics struct {
	ConnectedNet    int64
	PlatformCost    int64
	PlatformRevenue int64
	PlatformNet     int64
	FeeBearer       FeeBearer
}

// Analysis compares the three settlement modes for one prospective charge.
type Analysis struct {
	Amount           int64
	Method           account.PaymentMethod
	ProcessorFee     int64
	PlatformFee      int64
	Modes            map[account.SettlementMode]ModeEconomics
	BestForPlatform  account.SettlementMode
	BestForConnected account.SettlementMode
}

// AnalyzeModeEconomics computes, for each settlement mode, what the
// connected account nets and what the platform keeps, before committing
// to a checkout.
func (c *Calculator) AnalyzeModeEconomics(amount int64, method account.PaymentMethod, policy account.FeePolicy) (*Analysis, error) {
	processorFee, err := c.ProcessorFee(amount, method)
	if err != nil {
		return nil, err
	}
	platformFee, err := c.Compute(amount, policy)
	if err != nil {
		return nil, err
	}

	modes := map[account.SettlementMode]ModeEconomics{
		// Connected account absorbs the processor fee; the platform fee
		// is deducted separately at charge time.
		account.ModeOnBehalf: {
			ConnectedNet:    amount - processorFee - platformFee,
			PlatformCost:    0,
			PlatformRevenue: platformFee,
			PlatformNet:     platformFee,
			FeeBearer:       BearerConnected,
		},
		// Platform absorbs the processor fee and forwards amount minus
		// its own fee.
		account.ModeDestination: {
			ConnectedNet:    amount - platformFee,
			PlatformCost:    processorFee,
			PlatformRevenue: platformFee,
			PlatformNet:     platformFee - processorFee,
			FeeBearer:       BearerPlatform,
		},
		// Funds land on the platform balance; distribution happens later
		// through explicit transfers. Economics match destination before
		// any split.
		account.ModeManaged: {
			ConnectedNet:    amount - platformFee,
			PlatformCost:    processorFee,
			PlatformRevenue: platformFee,
			PlatformNet:     platformFee - processorFee,
			FeeBearer:       BearerPlatform,
		},
	}

	analysis := &Analysis{
		Amount:       amount,
		Method:       method,
		ProcessorFee: processorFee,
		PlatformFee:  platformFee,
		Modes:        modes,
	}

	bestPlatform := account.ModeOnBehalf
	bestConnected := account.ModeOnBehalf
	for _, mode := range []account.SettlementMode{account.ModeOnBehalf, account.ModeDestination, account.ModeManaged} {
		if modes[mode].PlatformNet > modes[bestPlatform].PlatformNet {
			bestPlatform = mode
		}
		if modes[mode].ConnectedNet > modes[bestConnected].ConnectedNet {
			bestConnected = mode
		}
	}
	analysis.BestForPlatform = bestPlatform
	analysis.BestForConnected = bestConnected

	return analysis, nil
}

// BreakevenFee is the minimum platform fee at which the platform does not
// lose money on a charge. Zero in on-behalf mode, where the connected
// account bears the processor fee.
func (c *Calculator) BreakevenFee(amount int64, method account.PaymentMethod, mode account.SettlementMode) (int64, error) {
	if !mode.Valid() {
		return 0, contracts.Invalid("mode", "unknown settlement mode")
	}
	if mode == account.ModeOnBehalf {
		return 0, nil
	}
	return c.ProcessorFee(amount, method)
}

// Sample is one historical charge used for policy optimization.
type Sample struct {
	Amount int64
	Method account.PaymentMethod
}

// OptimizePolicy derives a policy whose blended percentage covers observed
// processor costs plus a target margin. It keeps the fixed component
// stable and never proposes a negative fee.
func (c *Calculator) OptimizePolicy(samples []Sample, mode account.SettlementMode, targetMarginBps int64) account.FeePolicy {
	policy := account.FeePolicy{
		PercentBps: 60,
		Fixed:      200,
		MinFee:     500,
	}

	if len(samples) == 0 {
		return policy
	}

	var totalVolume, totalProcessorFees int64
	for _, s := range samples {
		fee, err := c.ProcessorFee(s.Amount, s.Method)
		if err != nil {
			continue
		}
		totalVolume += s.Amount
		if mode != account.ModeOnBehalf {
			totalProcessorFees += fee
		}
	}
	if totalVolume == 0 {
		return policy
	}

	blendedBps := totalProcessorFees * 10_000 / totalVolume
	targetBps := blendedBps + targetMarginBps
	if targetBps < 0 {
		targetBps = 0
	}

	policy.PercentBps = targetBps
	return policy
}
