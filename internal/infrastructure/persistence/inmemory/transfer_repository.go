package inmemory

import (
	"sort"
	"sync"

	"github.com/orkesta-pay/settlement-go/internal/domain/transfer"
)

type TransferRepository struct {
	mu           sync.RWMutex
	instructions map[string]*transfer.Instruction
	reversals    map[string][]*transfer.Reversal
}

func NewTransferRepository() *TransferRepository {
	return &TransferRepository{
		instructions: make(map[string]*transfer.Instruction),
		reversals:    make(map[string][]*transfer.Reversal),
	}
}

func (r *TransferRepository) Save(i *transfer.Instruction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *i
	r.instructions[i.InstructionID] = &cp
	return nil
}

func (r *TransferRepository) FindByID(instructionID string) (*transfer.Instruction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.instructions[instructionID]
	if !ok {
		return nil, transfer.ErrNotFound
	}

	cp := *i
	return &cp, nil
}

func (r *TransferRepository) ListByTenant(tenantID string, status transfer.Status, limit int) ([]*transfer.Instruction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*transfer.Instruction
	for _, i := range r.instructions {
		if i.TenantID != tenantID {
			continue
		}
		if status != "" && i.Status != status {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}

	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TransferRepository) Update(i *transfer.Instruction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instructions[i.InstructionID]; !ok {
		return transfer.ErrNotFound
	}

	cp := *i
	r.instructions[i.InstructionID] = &cp
	return nil
}

func (r *TransferRepository) SaveReversal(rev *transfer.Reversal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *rev
	r.reversals[rev.InstructionID] = append(r.reversals[rev.InstructionID], &cp)
	return nil
}

func (r *TransferRepository) ReversalsFor(instructionID string) ([]*transfer.Reversal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	revs := r.reversals[instructionID]
	out := make([]*transfer.Reversal, 0, len(revs))
	for _, rev := range revs {
		cp := *rev
		out = append(out, &cp)
	}
	return out, nil
}
