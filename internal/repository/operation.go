package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

const operationColumns = `id, account_id, operation_type, amount, description,
	balance_before, balance_after, transfer_id, operation_date`

type OperationRepository struct {
	db *sql.DB
}

func NewOperationRepository(db *sql.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

func (r *OperationRepository) Create(ctx context.Context, tx *sql.Tx, op *domain.AccountOperation) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO account_operations (
			account_id, operation_type, amount, description,
			balance_before, balance_after, transfer_id, operation_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		op.AccountID, op.Type, op.Amount, op.Description,
		op.BalanceBefore, op.BalanceAfter, op.TransferID, op.OperationDate,
	).Scan(&op.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListByAccountID returns the full history in the order it was written.
func (r *OperationRepository) ListByAccountID(ctx context.Context, accountID string) ([]domain.AccountOperation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+operationColumns+` FROM account_operations
		WHERE account_id = $1 ORDER BY id`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountID: %w", err)
	}
	return collectOperations(rows, "ListByAccountID")
}

func (r *OperationRepository) PageByAccountID(ctx context.Context, accountID string, limit, offset int) ([]domain.AccountOperation, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM account_operations WHERE account_id = $1`, accountID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("PageByAccountID: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+operationColumns+` FROM account_operations
		WHERE account_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("PageByAccountID: %w", err)
	}
	ops, err := collectOperations(rows, "PageByAccountID")
	if err != nil {
		return nil, 0, err
	}
	return ops, total, nil
}

func (r *OperationRepository) GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]domain.AccountOperation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+operationColumns+` FROM account_operations
		WHERE transfer_id = $1 ORDER BY id`, transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByTransferID: %w", err)
	}
	return collectOperations(rows, "GetByTransferID")
}

func collectOperations(rows *sql.Rows, op string) ([]domain.AccountOperation, error) {
	defer rows.Close()

	ops := []domain.AccountOperation{}
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		ops = append(ops, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return ops, nil
}

func scanOperation(s scanner) (*domain.AccountOperation, error) {
	var o domain.AccountOperation
	var transferID uuid.NullUUID

	err := s.Scan(
		&o.ID, &o.AccountID, &o.Type, &o.Amount, &o.Description,
		&o.BalanceBefore, &o.BalanceAfter, &transferID, &o.OperationDate,
	)
	if err != nil {
		return nil, err
	}

	if transferID.Valid {
		o.TransferID = &transferID.UUID
	}
	return &o, nil
}
