package transfer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orkesta-pay/settlement-go/internal/application/contracts"
	domainTransfer "github.com/orkesta-pay/settlement-go/internal/domain/transfer"
	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/processor"
)

var ErrOverReversal = errors.New("reversal exceeds remaining transfer amount")

// Service distributes settled charge funds across participants and tracks
// reversals. Used for managed-mode charges, where money lands on the
// platform balance first and moves out by explicit instruction.
type Service struct {
	Transfers domainTransfer.Repository
	Processor processor.Client
	Logger    logging.Logger
	Metrics   *metrics.Counters
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SplitOutcome reports what a split produced, including the platform's
// retained cut so callers can verify conservation themselves.
type SplitOutcome struct {
	GroupID      string                        `json:"group_id"`
	PlatformFee  int64                         `json:"platform_fee"`
	Instructions []*domainTransfer.Instruction `json:"instructions"`
}

// Split reserves the platform fee off the top, distributes the remainder by
// weight, clamps each share to the participant's floor/ceiling, and hands the
// last participant whatever is left so the amounts sum back to the charge
// exactly. Shares that clamp to zero are dropped rather than emitted.
func (s *Service) Split(ctx context.Context, tenantID, chargeID string, totalAmount int64, currency string, participants []domainTransfer.Participant, platformFeeBps int64) (*SplitOutcome, error) {
	if totalAmount <= 0 {
		return nil, contracts.Invalid("totalAmount", "must be positive")
	}
	if len(participants) == 0 {
		return nil, contracts.Invalid("participants", "at least one participant required")
	}
	if platformFeeBps < 0 || platformFeeBps > 10_000 {
		return nil, contracts.Invalid("platformFeeBps", "must be between 0 and 10000")
	}

	totalWeight := int64(0)
	for _, p := range participants {
		if p.AccountID == "" {
			return nil, contracts.Invalid("participants", "participant missing account id")
		}
		if p.Weight <= 0 {
			return nil, contracts.Invalid("participants", "participant weight must be positive")
		}
		if p.MinAmount < 0 {
			return nil, contracts.Invalid("participants", "participant min amount must not be negative")
		}
		if p.MaxAmount > 0 && p.MaxAmount < p.MinAmount {
			return nil, contracts.Invalid("participants", "participant max amount below min amount")
		}
		totalWeight += p.Weight
	}

	platformFee := totalAmount * platformFeeBps / 10_000
	distributable := totalAmount - platformFee

	shares := allocate(distributable, participants, totalWeight)

	groupID := "trg_" + uuid.NewString()
	now := s.now()

	outcome := &SplitOutcome{GroupID: groupID, PlatformFee: platformFee}
	for idx, p := range participants {
		amount := shares[idx]
		if amount == 0 {
			continue
		}

		result, err := s.Processor.CreateTransfer(ctx, processor.TransferParams{
			Amount:         amount,
			Currency:       currency,
			Destination:    p.AccountID,
			SourceChargeID: chargeID,
			GroupID:        groupID,
			Description:    p.Description,
			Metadata: map[string]string{
				"tenant_id": tenantID,
				"charge_id": chargeID,
			},
		})
		if err != nil {
			return nil, err
		}

		instruction := &domainTransfer.Instruction{
			InstructionID:  result.TransferID,
			TenantID:       tenantID,
			AccountID:      p.AccountID,
			Amount:         amount,
			Currency:       currency,
			SourceChargeID: chargeID,
			GroupID:        groupID,
			Description:    p.Description,
			Status:         domainTransfer.StatusPending,
			CreatedAt:      now,
		}
		if err := s.Transfers.Save(instruction); err != nil {
			return nil, err
		}

		outcome.Instructions = append(outcome.Instructions, instruction)
		s.Metrics.IncTransfersCreated()
	}

	s.Logger.Info("charge split", map[string]any{
		"tenant_id":    tenantID,
		"charge_id":    chargeID,
		"group_id":     groupID,
		"total":        totalAmount,
		"platform_fee": platformFee,
		"instructions": len(outcome.Instructions),
	})

	return outcome, nil
}

// allocate computes per-participant amounts. Every share but the last is the
// weight-proportional cut clamped to the participant's bounds and capped at
// what remains; the last share is exactly what remains, so the total never
// drifts from the distributable amount.
func allocate(distributable int64, participants []domainTransfer.Participant, totalWeight int64) []int64 {
	shares := make([]int64, len(participants))
	remaining := distributable

	for idx, p := range participants {
		if remaining <= 0 {
			break
		}

		var amount int64
		if idx == len(participants)-1 {
			amount = remaining
		} else {
			amount = distributable * p.Weight / totalWeight
			amount = clamp(amount, p.MinAmount, p.MaxAmount)
			if amount > remaining {
				amount = remaining
			}
		}

		shares[idx] = amount
		remaining -= amount
	}
	return shares
}

func clamp(amount, min, max int64) int64 {
	if amount < min {
		amount = min
	}
	if max > 0 && amount > max {
		amount = max
	}
	return amount
}

// Reverse pulls funds back from a paid-out instruction. Amount 0 means a
// full reversal of whatever remains. The original instruction amount is
// never rewritten; cumulative reversals accrue on ReversedAmount.
func (s *Service) Reverse(ctx context.Context, instructionID string, amount int64, reason string) (*domainTransfer.Reversal, error) {
	if amount < 0 {
		return nil, contracts.Invalid("amount", "must not be negative")
	}

	instruction, err := s.Transfers.FindByID(instructionID)
	if err != nil {
		return nil, err
	}

	remaining := instruction.Remaining()
	if remaining == 0 || amount > remaining {
		return nil, ErrOverReversal
	}
	if amount == 0 {
		amount = remaining
	}

	result, err := s.Processor.ReverseTransfer(ctx, instructionID, amount, reason)
	if err != nil {
		return nil, err
	}

	reversal := &domainTransfer.Reversal{
		ReversalID:    result.ReversalID,
		InstructionID: instructionID,
		Amount:        amount,
		Reason:        reason,
		CreatedAt:     s.now(),
	}
	if err := s.Transfers.SaveReversal(reversal); err != nil {
		return nil, err
	}

	instruction.ReversedAmount += amount
	if instruction.Remaining() == 0 {
		instruction.Status = domainTransfer.StatusReversed
	} else {
		instruction.Status = domainTransfer.StatusPartiallyReversed
	}
	if err := s.Transfers.Update(instruction); err != nil {
		return nil, err
	}

	s.Metrics.IncTransfersReversed()
	s.Logger.Info("transfer reversed", map[string]any{
		"instruction_id": instructionID,
		"amount":         amount,
		"status":         string(instruction.Status),
		"reason":         strings.TrimSpace(reason),
	})

	return reversal, nil
}

// GetInstruction returns an instruction together with its reversal history.
func (s *Service) GetInstruction(ctx context.Context, instructionID string) (*domainTransfer.Instruction, []*domainTransfer.Reversal, error) {
	instruction, err := s.Transfers.FindByID(instructionID)
	if err != nil {
		return nil, nil, err
	}
	reversals, err := s.Transfers.ReversalsFor(instructionID)
	if err != nil {
		return nil, nil, err
	}
	return instruction, reversals, nil
}

// ListByTenant pages a tenant's instructions, newest first, optionally
// filtered by status.
func (s *Service) ListByTenant(ctx context.Context, tenantID string, status domainTransfer.Status, limit int) ([]*domainTransfer.Instruction, error) {
	if tenantID == "" {
		return nil, contracts.Invalid("tenantId", "required")
	}
	return s.Transfers.ListByTenant(tenantID, status, limit)
}
