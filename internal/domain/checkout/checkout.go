package checkout

import (
	"time"

	"github.com/orkesta-pay/settlement-go/internal/domain/account"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusComplete Status = "COMPLETE"
	StatusExpired  Status = "EXPIRED"
)

// Intent is one attempted payment. The platform fee and settlement
// instructions are fixed at creation; a complete intent is immutable.
type Intent struct {
	IntentID        string
	TenantID        string
	OrderID         string
	Amount          int64
	Currency        string
	Methods         []account.PaymentMethod
	Mode            account.SettlementMode
	PlatformFee     int64
	DestinationID   string
	CheckoutURL     string
	ChargeID        string
	Status          Status
	ExpiresAt       time.Time
	Metadata        map[string]string
	CreatedAt       time.Time
	CompletedAt     time.Time
}

// Expired reports whether the intent is past its expiry window. Expiry is
// enforced lazily: a pending intent read after ExpiresAt is expired even if
// no sweep has marked it yet.
func (i *Intent) Expired(now time.Time) bool {
	return i.Status == StatusPending && now.After(i.ExpiresAt)
}

// FeeBreakdown is returned to checkout callers alongside the intent.
type FeeBreakdown struct {
	Amount       int64 `json:"amount"`
	PlatformFee  int64 `json:"platform_fee"`
	ProcessorFee int64 `json:"processor_fee"`
	ConnectedNet int64 `json:"connected_net"`
}
