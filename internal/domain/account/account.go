package account

import "time"

// SettlementMode selects who bears processor fees and how funds move.
type SettlementMode string

const (
	ModeOnBehalf    SettlementMode = "ON_BEHALF"
	ModeDestination SettlementMode = "DESTINATION"
	ModeManaged     SettlementMode = "MANAGED"
)

func (m SettlementMode) Valid() bool {
	switch m {
	case ModeOnBehalf, ModeDestination, ModeManaged:
		return true
	}
	return false
}

// PaymentMethod is a processor-side acquiring channel.
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodVoucher      PaymentMethod = "voucher"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodVoucher, MethodBankTransfer:
		return true
	}
	return false
}

// FeePolicy defines the platform fee taken per charge. All amounts are in
// minor currency units; the percentage rate is carried in basis points so
// fee arithmetic stays in integers.
type FeePolicy struct {
	PercentBps int64
	Fixed      int64
	MinFee     int64
	MaxFee     int64 // 0 means no ceiling
}

// ConnectedAccount is a merchant sub-account under the platform.
// Mode and FeePolicy are read at intent creation; in-flight intents keep
// the values they were created with.
type ConnectedAccount struct {
	AccountID          string
	TenantID           string
	Mode               SettlementMode
	FeePolicy          FeePolicy
	OnboardingComplete bool
	Capabilities       []PaymentMethod
	Disabled           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (a *ConnectedAccount) HasCapability(m PaymentMethod) bool {
	for _, c := range a.Capabilities {
		if c == m {
			return true
		}
	}
	return false
}
