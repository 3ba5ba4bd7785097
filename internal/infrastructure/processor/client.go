package processor

import (
	"context"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/domain/account"
)

// SessionParams carries everything the processor needs to host a checkout
// page, including the settlement-routing fields for the three modes.
type SessionParams struct {
	TenantID       string
	OrderID        string
	Amount         int64
	Currency       string
	Methods        []account.PaymentMethod
	OnBehalfOf     string
	Destination    string
	TransferAmount int64
	ApplicationFee int64
	ExpiresAt      time.Time
	Metadata       map[string]string
}

type Session struct {
	SessionID   string
	CheckoutURL string
}

type TransferParams struct {
	Amount         int64
	Currency       string
	Destination    string
	SourceChargeID string
	GroupID        string
	Description    string
	Metadata       map[string]string
}

type TransferResult struct {
	TransferID string
}

type ReversalResult struct {
	ReversalID string
	Amount     int64
}

type PayoutRecord struct {
	PayoutID    string
	AccountID   string
	Amount      int64
	Currency    string
	Status      string
	ArrivalDate time.Time
}

// Client is the upstream payment-processor API. The settlement core only
// depends on this interface; acquiring, page hosting and disbursement live
// on the other side of it.
type Client interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
	CreateTransfer(ctx context.Context, params TransferParams) (*TransferResult, error)
	ReverseTransfer(ctx context.Context, transferID string, amount int64, reason string) (*ReversalResult, error)
	GetPayout(ctx context.Context, accountID, payoutID string) (*PayoutRecord, error)
}
