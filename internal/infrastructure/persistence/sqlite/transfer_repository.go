package sqlite

import (
	"database/sql"
	"errors"

	"github.com/orkesta-pay/settlement-go/internal/domain/transfer"
)

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Save(i *transfer.Instruction) error {
	_, err := r.db.Exec(
		`INSERT INTO transfer_instructions
		 (instruction_id, tenant_id, account_id, amount, currency,
		  source_charge_id, group_id, description, status, reversed_amount,
		  created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.InstructionID,
		i.TenantID,
		i.AccountID,
		i.Amount,
		i.Currency,
		i.SourceChargeID,
		i.GroupID,
		i.Description,
		string(i.Status),
		i.ReversedAmount,
		i.CreatedAt,
	)
	return err
}

func (r *TransferRepository) FindByID(instructionID string) (*transfer.Instruction, error) {
	row := r.db.QueryRow(
		selectInstruction+` WHERE instruction_id = ?`,
		instructionID,
	)

	i, err := scanInstruction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transfer.ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (r *TransferRepository) ListByTenant(tenantID string, status transfer.Status, limit int) ([]*transfer.Instruction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		selectInstruction+`
		 WHERE tenant_id = ?
		   AND (? = '' OR status = ?)
		 ORDER BY created_at DESC
		 LIMIT ?`,
		tenantID,
		string(status), string(status),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*transfer.Instruction
	for rows.Next() {
		i, err := scanInstruction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *TransferRepository) Update(i *transfer.Instruction) error {
	res, err := r.db.Exec(
		`UPDATE transfer_instructions
		 SET status = ?, reversed_amount = ?
		 WHERE instruction_id = ?`,
		string(i.Status),
		i.ReversedAmount,
		i.InstructionID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return transfer.ErrNotFound
	}

	return nil
}

func (r *TransferRepository) SaveReversal(rev *transfer.Reversal) error {
	_, err := r.db.Exec(
		`INSERT INTO transfer_reversals
		 (reversal_id, instruction_id, amount, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rev.ReversalID,
		rev.InstructionID,
		rev.Amount,
		rev.Reason,
		rev.CreatedAt,
	)
	return err
}

func (r *TransferRepository) ReversalsFor(instructionID string) ([]*transfer.Reversal, error) {
	rows, err := r.db.Query(
		`SELECT reversal_id, instruction_id, amount, reason, created_at
		 FROM transfer_reversals
		 WHERE instruction_id = ?
		 ORDER BY created_at ASC`,
		instructionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*transfer.Reversal
	for rows.Next() {
		var rev transfer.Reversal
		if err := rows.Scan(
			&rev.ReversalID,
			&rev.InstructionID,
			&rev.Amount,
			&rev.Reason,
			&rev.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &rev)
	}
	return out, rows.Err()
}

const selectInstruction = `SELECT instruction_id, tenant_id, account_id,
	amount, currency, source_charge_id, group_id, description, status,
	reversed_amount, created_at
	FROM transfer_instructions`

func scanInstruction(scan func(dest ...any) error) (*transfer.Instruction, error) {
	var (
		i      transfer.Instruction
		status string
	)

	if err := scan(
		&i.InstructionID,
		&i.TenantID,
		&i.AccountID,
		&i.Amount,
		&i.Currency,
		&i.SourceChargeID,
		&i.GroupID,
		&i.Description,
		&status,
		&i.ReversedAmount,
		&i.CreatedAt,
	); err != nil {
		return nil, err
	}

	i.Status = transfer.Status(status)
	return &i, nil
}
