package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/logging"
)

const openingBalanceDescription = "Opening balance"

func (s *AccountService) SaveCurrentAccount(ctx context.Context, initialBalance, overdraft decimal.Decimal, customerID int64) (*domain.BankAccount, error) {
	if err := domain.ValidateOverdraft(overdraft); err != nil {
		return nil, fmt.Errorf("SaveCurrentAccount: overdraft %s: %w", overdraft, err)
	}

	account, err := s.openAccount(ctx, customerID, initialBalance, domain.CurrentAccount{Overdraft: overdraft})
	if err != nil {
		return nil, fmt.Errorf("SaveCurrentAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) SaveSavingAccount(ctx context.Context, initialBalance, interestRate decimal.Decimal, customerID int64) (*domain.BankAccount, error) {
	if err := domain.ValidateInterestRate(interestRate); err != nil {
		return nil, fmt.Errorf("SaveSavingAccount: interest rate %s: %w", interestRate, err)
	}

	account, err := s.openAccount(ctx, customerID, initialBalance, domain.SavingAccount{InterestRate: interestRate})
	if err != nil {
		return nil, fmt.Errorf("SaveSavingAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) openAccount(ctx context.Context, customerID int64, initialBalance decimal.Decimal, variant domain.AccountVariant) (*domain.BankAccount, error) {
	if err := domain.ValidateOpeningBalance(initialBalance); err != nil {
		return nil, fmt.Errorf("openAccount: initial balance %s: %w", initialBalance, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, fmt.Errorf("openAccount: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.BankAccount{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Balance:    initialBalance,
		Status:     domain.AccountStatusCreated,
		Version:    1,
		Variant:    variant,
		CreatedAt:  now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("openAccount: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("openAccount: %w", err)
	}

	if initialBalance.IsPositive() {
		op := &domain.AccountOperation{
			AccountID:     account.ID,
			Type:          domain.OperationTypeCredit,
			Amount:        initialBalance,
			Description:   openingBalanceDescription,
			BalanceBefore: decimal.Zero,
			BalanceAfter:  initialBalance,
			OperationDate: now,
		}
		if err := s.operations.Create(ctx, tx, op); err != nil {
			return nil, fmt.Errorf("openAccount: opening operation: %w", err)
		}
	}

	if err := s.writeOutboxEvent(ctx, tx, domain.OutboxEventTypeAccountCreated, accountCreatedPayload{
		AccountID:   account.ID,
		CustomerID:  customerID,
		AccountType: account.Kind(),
		Balance:     account.Balance,
		OccurredAt:  now,
	}, now); err != nil {
		return nil, fmt.Errorf("openAccount: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("openAccount: commit: %w", err)
	}

	logging.FromContext(ctx).Info("account created",
		"account_id", account.ID,
		"customer_id", customerID,
		"account_type", account.Kind(),
		"balance", account.Balance.String(),
	)

	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.BankAccount, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account, err := s.requireAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteAccount: %w", translateNotFound(err, domain.ErrBankAccountNotFound))
	}

	logging.FromContext(ctx).Info("account deleted", "account_id", id)
	return nil
}

func (s *AccountService) AccountHistory(ctx context.Context, id string) ([]domain.AccountOperation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.requireAccount(ctx, id); err != nil {
		return nil, fmt.Errorf("AccountHistory: %w", err)
	}

	ops, err := s.operations.ListByAccountID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("AccountHistory: %w", err)
	}
	return ops, nil
}

// AccountHistoryPage returns one zero-based page of operations, newest first.
func (s *AccountService) AccountHistoryPage(ctx context.Context, id string, page, size int) (*domain.AccountHistory, error) {
	if page < 0 || size <= 0 || size > domain.MaxHistoryPageSize {
		return nil, fmt.Errorf("AccountHistoryPage: page must be >= 0 and size in 1..%d: %w",
			domain.MaxHistoryPageSize, domain.ErrInvalidRequest)
	}
	if page > math.MaxInt/size {
		return nil, fmt.Errorf("AccountHistoryPage: page %d out of range: %w", page, domain.ErrInvalidRequest)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account, err := s.requireAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("AccountHistoryPage: %w", err)
	}

	ops, total, err := s.operations.PageByAccountID(ctx, id, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("AccountHistoryPage: %w", err)
	}

	return &domain.AccountHistory{
		AccountID:   account.ID,
		Balance:     account.Balance,
		CurrentPage: page,
		PageSize:    size,
		TotalPages:  pageCount(total, size),
		Operations:  ops,
	}, nil
}

func pageCount(total, size int) int {
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

func (s *AccountService) ActivateAccount(ctx context.Context, id string) (*domain.BankAccount, error) {
	account, err := s.changeStatus(ctx, id, domain.AccountStatusActivated)
	if err != nil {
		return nil, fmt.Errorf("ActivateAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) SuspendAccount(ctx context.Context, id string) (*domain.BankAccount, error) {
	account, err := s.changeStatus(ctx, id, domain.AccountStatusSuspended)
	if err != nil {
		return nil, fmt.Errorf("SuspendAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) changeStatus(ctx context.Context, id string, next domain.AccountStatus) (*domain.BankAccount, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("changeStatus: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, id)
	if err != nil {
		return nil, fmt.Errorf("changeStatus: %w", err)
	}
	account := locked[id]

	previous := account.Status
	if !previous.CanTransitionTo(next) {
		return nil, fmt.Errorf("changeStatus: %s to %s: %w", previous, next, domain.ErrInvalidStatusTransition)
	}

	if err := s.accounts.UpdateStatus(ctx, tx, id, next, account.Version+1); err != nil {
		return nil, fmt.Errorf("changeStatus: %w", err)
	}
	account.Status = next
	account.Version++

	now := time.Now().UTC()
	if err := s.writeOutboxEvent(ctx, tx, domain.OutboxEventTypeAccountStatusChanged, statusChangedPayload{
		AccountID:  id,
		From:       previous,
		To:         next,
		OccurredAt: now,
	}, now); err != nil {
		return nil, fmt.Errorf("changeStatus: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("changeStatus: commit: %w", err)
	}

	logging.FromContext(ctx).Info("account status changed",
		"account_id", id,
		"from", previous,
		"to", next,
	)

	return account, nil
}

func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, ids ...string) (map[string]*domain.BankAccount, error) {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	result := make(map[string]*domain.BankAccount, len(sorted))
	for _, id := range sorted {
		acct, err := accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", translateNotFound(err, domain.ErrBankAccountNotFound))
		}
		result[id] = acct
	}
	return result, nil
}
