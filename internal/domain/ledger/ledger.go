package ledger

import "time"

type EntryType string

const (
	EntryCharge     EntryType = "CHARGE"
	EntryRefund     EntryType = "REFUND"
	EntryDispute    EntryType = "DISPUTE"
	EntryAdjustment EntryType = "ADJUSTMENT"
)

// Entry is one immutable line in the append-only settlement ledger.
// Amounts are gross; fee columns are only set on CHARGE entries.
type Entry struct {
	EntryID      string
	TenantID     string
	AccountID    string
	Type         EntryType
	Amount       int64
	ProcessorFee int64
	PlatformFee  int64
	Currency     string
	SourceID     string
	SettledAt    time.Time
	CreatedAt    time.Time
}
