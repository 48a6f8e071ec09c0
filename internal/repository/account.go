package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

const accountColumns = `id, customer_id, account_type, balance, overdraft, interest_rate,
	status, version, created_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, tx *sql.Tx, account *domain.BankAccount) error {
	var overdraft, interestRate decimal.NullDecimal
	switch v := account.Variant.(type) {
	case domain.CurrentAccount:
		overdraft = decimal.NewNullDecimal(v.Overdraft)
	case domain.SavingAccount:
		interestRate = decimal.NewNullDecimal(v.InterestRate)
	default:
		return fmt.Errorf("Create: unknown account variant %T: %w", account.Variant, domain.ErrInvalidRequest)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO bank_accounts (
			id, customer_id, account_type, balance, overdraft, interest_rate,
			status, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.CustomerID, account.Kind(), account.Balance,
		overdraft, interestRate,
		account.Status, account.Version, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return collectAccounts(rows, "List")
}

func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]domain.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE customer_id = $1 ORDER BY created_at, id`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByCustomerID: %w", err)
	}
	return collectAccounts(rows, "GetByCustomerID")
}

func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.BankAccount, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1 FOR UPDATE`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id string, newBalance decimal.Decimal, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bank_accounts SET balance = $1, version = $2 WHERE id = $3 AND version = $4`,
		newBalance, newVersion, id, newVersion-1,
	)
	if violatesConstraint(err, pqCheckViolation, balanceFloorCheck) {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrBalanceNotSufficient)
	}
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}
	return checkVersionedUpdate(res, "UpdateBalance")
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status domain.AccountStatus, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bank_accounts SET status = $1, version = $2 WHERE id = $3 AND version = $4`,
		status, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return checkVersionedUpdate(res, "UpdateStatus")
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func checkVersionedUpdate(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrVersionConflict)
	}
	return nil
}

func collectAccounts(rows *sql.Rows, op string) ([]domain.BankAccount, error) {
	defer rows.Close()

	accounts := []domain.BankAccount{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return accounts, nil
}

func scanAccount(s scanner) (*domain.BankAccount, error) {
	var a domain.BankAccount
	var kind domain.AccountKind
	var overdraft, interestRate decimal.NullDecimal

	err := s.Scan(
		&a.ID, &a.CustomerID, &kind, &a.Balance, &overdraft, &interestRate,
		&a.Status, &a.Version, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.AccountKindCurrent:
		a.Variant = domain.CurrentAccount{Overdraft: overdraft.Decimal}
	case domain.AccountKindSaving:
		a.Variant = domain.SavingAccount{InterestRate: interestRate.Decimal}
	default:
		return nil, fmt.Errorf("scanAccount: unknown account type %q", kind)
	}

	return &a, nil
}
