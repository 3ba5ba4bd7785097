package transfer

import "time"

type Status string

const (
	StatusPending           Status = "PENDING"
	StatusPaid              Status = "PAID"
	StatusFailed            Status = "FAILED"
	StatusReversed          Status = "REVERSED"
	StatusPartiallyReversed Status = "PARTIALLY_REVERSED"
)

// Instruction moves funds from the platform balance to a connected
// account. Reversals never mutate Amount; ReversedAmount accumulates.
type Instruction struct {
	InstructionID  string
	TenantID       string
	AccountID      string
	Amount         int64
	Currency       string
	SourceChargeID string
	GroupID        string
	Description    string
	Status         Status
	ReversedAmount int64
	CreatedAt      time.Time
}

// Remaining is the portion of the instruction not yet reversed.
func (i *Instruction) Remaining() int64 {
	return i.Amount - i.ReversedAmount
}

// Reversal is a standalone record of funds pulled back from a connected
// account.
type Reversal struct {
	ReversalID    string
	InstructionID string
	Amount        int64
	Reason        string
	CreatedAt     time.Time
}

// Participant is one payee in a multi-party split. Weight drives the
// proportional share; MinAmount and MaxAmount clamp the result.
type Participant struct {
	AccountID   string
	Weight      int64
	MinAmount   int64
	MaxAmount   int64 // 0 means no ceiling
	Description string
}
