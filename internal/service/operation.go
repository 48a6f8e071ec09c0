package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/logging"
)

type TransferRequest struct {
	From   string
	To     string
	Amount decimal.Decimal
}

type TransferResult struct {
	TransferID uuid.UUID
	Debit      domain.AccountOperation
	Credit     domain.AccountOperation
}

func (s *AccountService) Credit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.AccountOperation, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("Credit: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Credit: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, accountID)
	if err != nil {
		return nil, fmt.Errorf("Credit: %w", err)
	}

	op, err := s.applyCredit(ctx, tx, locked[accountID], amount, description, nil, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("Credit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Credit: commit: %w", err)
	}

	logging.FromContext(ctx).Info("credit completed",
		"account_id", accountID,
		"operation_id", op.ID,
		"amount", amount.String(),
		"balance", op.BalanceAfter.String(),
	)

	return op, nil
}

func (s *AccountService) Debit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.AccountOperation, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Debit: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, accountID)
	if err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	op, err := s.applyDebit(ctx, tx, locked[accountID], amount, description, nil, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Debit: commit: %w", err)
	}

	logging.FromContext(ctx).Info("debit completed",
		"account_id", accountID,
		"operation_id", op.ID,
		"amount", amount.String(),
		"balance", op.BalanceAfter.String(),
	)

	return op, nil
}

// Transfer moves amount between two accounts atomically. Both legs share
// one timestamp and one transfer id.
func (s *AccountService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	if req.From == req.To {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrSelfTransfer)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Transfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	source, dest := locked[req.From], locked[req.To]

	if err := checkNotSuspended(dest, "destination"); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	transferID := uuid.New()
	now := time.Now().UTC()

	debit, err := s.applyDebit(ctx, tx, source, req.Amount, "Transfer to "+req.To, &transferID, now)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	credit, err := s.applyCredit(ctx, tx, dest, req.Amount, "Transfer from "+req.From, &transferID, now)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Transfer: commit: %w", err)
	}

	logging.FromContext(ctx).Info("transfer completed",
		"transfer_id", transferID,
		"source_account", req.From,
		"dest_account", req.To,
		"amount", req.Amount.String(),
	)

	return &TransferResult{TransferID: transferID, Debit: *debit, Credit: *credit}, nil
}

// GetTransfer rebuilds a transfer from its two operation legs.
func (s *AccountService) GetTransfer(ctx context.Context, transferID uuid.UUID) (*TransferResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ops, err := s.operations.GetByTransferID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("GetTransfer: %w", err)
	}

	result := &TransferResult{TransferID: transferID}
	var haveDebit, haveCredit bool
	for _, op := range ops {
		switch op.Type {
		case domain.OperationTypeDebit:
			result.Debit, haveDebit = op, true
		case domain.OperationTypeCredit:
			result.Credit, haveCredit = op, true
		}
	}
	if !haveDebit || !haveCredit {
		return nil, fmt.Errorf("GetTransfer: %s: %w", transferID, domain.ErrTransferNotFound)
	}
	return result, nil
}

// applyCredit and applyDebit expect account to be locked by tx. They update
// account in place so a caller can chain legs on the same row.
func (s *AccountService) applyCredit(ctx context.Context, tx *sql.Tx, account *domain.BankAccount, amount decimal.Decimal, description string, transferID *uuid.UUID, now time.Time) (*domain.AccountOperation, error) {
	if err := checkNotSuspended(account, "account"); err != nil {
		return nil, fmt.Errorf("applyCredit: %w", err)
	}

	return s.writeOperation(ctx, tx, account, domain.OperationTypeCredit, amount, description, transferID, now)
}

func (s *AccountService) applyDebit(ctx context.Context, tx *sql.Tx, account *domain.BankAccount, amount decimal.Decimal, description string, transferID *uuid.UUID, now time.Time) (*domain.AccountOperation, error) {
	if err := checkNotSuspended(account, "account"); err != nil {
		return nil, fmt.Errorf("applyDebit: %w", err)
	}
	if !account.CanDebit(amount) {
		return nil, fmt.Errorf("applyDebit: %w", domain.ErrBalanceNotSufficient)
	}

	return s.writeOperation(ctx, tx, account, domain.OperationTypeDebit, amount, description, transferID, now)
}

func (s *AccountService) writeOperation(
	ctx context.Context,
	tx *sql.Tx,
	account *domain.BankAccount,
	opType domain.OperationType,
	amount decimal.Decimal,
	description string,
	transferID *uuid.UUID,
	now time.Time,
) (*domain.AccountOperation, error) {
	before := account.Balance
	after := before.Add(amount)
	eventType := domain.OutboxEventTypeAccountCredited
	if opType == domain.OperationTypeDebit {
		after = before.Sub(amount)
		eventType = domain.OutboxEventTypeAccountDebited
	}
	if !domain.FitsMoney(after) {
		return nil, fmt.Errorf("writeOperation: resulting balance %s out of range: %w", after, domain.ErrInvalidAmount)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, after, account.Version+1); err != nil {
		return nil, fmt.Errorf("writeOperation: update balance: %w", err)
	}
	account.Balance = after
	account.Version++

	op := &domain.AccountOperation{
		AccountID:     account.ID,
		Type:          opType,
		Amount:        amount,
		Description:   description,
		BalanceBefore: before,
		BalanceAfter:  after,
		TransferID:    transferID,
		OperationDate: now,
	}
	if err := s.operations.Create(ctx, tx, op); err != nil {
		return nil, fmt.Errorf("writeOperation: create operation: %w", err)
	}

	if err := s.writeOutboxEvent(ctx, tx, eventType, balanceChangedPayload{
		AccountID:   account.ID,
		OperationID: op.ID,
		Type:        opType,
		Amount:      amount,
		Balance:     after,
		TransferID:  transferID,
		OccurredAt:  now,
	}, now); err != nil {
		return nil, fmt.Errorf("writeOperation: %w", err)
	}

	return op, nil
}

func checkNotSuspended(account *domain.BankAccount, role string) error {
	if account.Status == domain.AccountStatusSuspended {
		return fmt.Errorf("%s %s: %w", role, account.ID, domain.ErrAccountSuspended)
	}
	return nil
}
