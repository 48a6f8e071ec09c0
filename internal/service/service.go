package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

type customerRepo interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Search(ctx context.Context, pattern string) ([]domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id int64) error
}

type accountRepo interface {
	Create(ctx context.Context, tx *sql.Tx, account *domain.BankAccount) error
	GetByID(ctx context.Context, id string) (*domain.BankAccount, error)
	List(ctx context.Context) ([]domain.BankAccount, error)
	GetByCustomerID(ctx context.Context, customerID int64) ([]domain.BankAccount, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.BankAccount, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id string, newBalance decimal.Decimal, newVersion int64) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status domain.AccountStatus, newVersion int64) error
	Delete(ctx context.Context, id string) error
}

type operationRepo interface {
	Create(ctx context.Context, tx *sql.Tx, op *domain.AccountOperation) error
	ListByAccountID(ctx context.Context, accountID string) ([]domain.AccountOperation, error)
	PageByAccountID(ctx context.Context, accountID string, limit, offset int) ([]domain.AccountOperation, int, error)
	GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]domain.AccountOperation, error)
}

type outboxRepo interface {
	Create(ctx context.Context, tx *sql.Tx, event *domain.OutboxEvent) error
}

// AccountService owns every business rule of the bank: customer and
// account lifecycle plus the balance-mutating operations.
type AccountService struct {
	customers  customerRepo
	accounts   accountRepo
	operations operationRepo
	outbox     outboxRepo
	db         *sql.DB
	timeout    time.Duration
}

func NewAccountService(
	customers customerRepo,
	accounts accountRepo,
	operations operationRepo,
	outbox outboxRepo,
	db *sql.DB,
	timeout time.Duration,
) *AccountService {
	return &AccountService{
		customers:  customers,
		accounts:   accounts,
		operations: operations,
		outbox:     outbox,
		db:         db,
		timeout:    timeout,
	}
}

func (s *AccountService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// translateNotFound swaps the repository's generic not-found for the
// entity-specific kind callers match on.
func translateNotFound(err, kind error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return kind
	}
	return err
}

func (s *AccountService) requireCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("requireCustomer: %w", translateNotFound(err, domain.ErrCustomerNotFound))
	}
	return c, nil
}

func (s *AccountService) requireAccount(ctx context.Context, id string) (*domain.BankAccount, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("requireAccount: %w", translateNotFound(err, domain.ErrBankAccountNotFound))
	}
	return a, nil
}
