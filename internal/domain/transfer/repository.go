package transfer

import "errors"

var ErrNotFound = errors.New("transfer instruction not found")

type Repository interface {
	Save(*Instruction) error
	FindByID(instructionID string) (*Instruction, error)
	ListByTenant(tenantID string, status Status, limit int) ([]*Instruction, error)
	Update(*Instruction) error
	SaveReversal(*Reversal) error
	ReversalsFor(instructionID string) ([]*Reversal, error)
}
