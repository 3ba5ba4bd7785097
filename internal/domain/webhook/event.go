package webhook

import "time"

// EventType mirrors the processor's asynchronous notification types.
type EventType string

const (
	PaymentSucceeded EventType = "payment_intent.succeeded"
	PaymentFailed    EventType = "payment_intent.payment_failed"
	ChargeRefunded   EventType = "charge.refunded"
	DisputeCreated   EventType = "charge.dispute.created"
	PayoutPaid       EventType = "payout.paid"
	PayoutFailed     EventType = "payout.failed"
	AccountUpdated   EventType = "account.updated"
)

// Event is a processor notification. It is persisted before any handler
// runs; the unique external event id is the idempotency boundary.
type Event struct {
	EventID        string
	Type           EventType
	TenantID       string
	Payload        []byte
	IdempotencyKey string
	Processed      bool
	Attempts       int
	LastError      string
	ReceivedAt     time.Time
	ProcessedAt    time.Time
}
