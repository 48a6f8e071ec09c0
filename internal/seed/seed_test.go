package seed

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/service"
)

type recordingService struct {
	existing  []domain.Customer
	customers []service.CustomerRequest
	accounts  []*domain.BankAccount
	activated []string
	credits   map[string][]decimal.Decimal
	debits    map[string][]decimal.Decimal
	transfers []service.TransferRequest
	debitErr  error
}

func newRecordingService() *recordingService {
	return &recordingService{
		credits: make(map[string][]decimal.Decimal),
		debits:  make(map[string][]decimal.Decimal),
	}
}

func (s *recordingService) ListCustomers(context.Context) ([]domain.Customer, error) {
	return s.existing, nil
}

func (s *recordingService) SaveCustomer(_ context.Context, req service.CustomerRequest) (*domain.Customer, error) {
	s.customers = append(s.customers, req)
	return &domain.Customer{ID: int64(len(s.customers)), Name: req.Name, Email: req.Email}, nil
}

func (s *recordingService) open(customerID int64, balance decimal.Decimal, v domain.AccountVariant) *domain.BankAccount {
	a := &domain.BankAccount{
		ID:         "acc-" + strconv.Itoa(len(s.accounts)+1),
		CustomerID: customerID,
		Balance:    balance,
		Status:     domain.AccountStatusCreated,
		Variant:    v,
	}
	s.accounts = append(s.accounts, a)
	return a
}

func (s *recordingService) SaveCurrentAccount(_ context.Context, balance, overdraft decimal.Decimal, customerID int64) (*domain.BankAccount, error) {
	return s.open(customerID, balance, domain.CurrentAccount{Overdraft: overdraft}), nil
}

func (s *recordingService) SaveSavingAccount(_ context.Context, balance, rate decimal.Decimal, customerID int64) (*domain.BankAccount, error) {
	return s.open(customerID, balance, domain.SavingAccount{InterestRate: rate}), nil
}

func (s *recordingService) ActivateAccount(_ context.Context, id string) (*domain.BankAccount, error) {
	s.activated = append(s.activated, id)
	return &domain.BankAccount{ID: id, Status: domain.AccountStatusActivated}, nil
}

func (s *recordingService) Credit(_ context.Context, id string, amount decimal.Decimal, _ string) (*domain.AccountOperation, error) {
	s.credits[id] = append(s.credits[id], amount)
	return &domain.AccountOperation{AccountID: id, Amount: amount}, nil
}

func (s *recordingService) Debit(_ context.Context, id string, amount decimal.Decimal, desc string) (*domain.AccountOperation, error) {
	if s.debitErr != nil && strings.HasPrefix(desc, "Shopping") {
		return nil, s.debitErr
	}
	s.debits[id] = append(s.debits[id], amount)
	return &domain.AccountOperation{AccountID: id, Amount: amount}, nil
}

func (s *recordingService) Transfer(_ context.Context, req service.TransferRequest) (*service.TransferResult, error) {
	s.transfers = append(s.transfers, req)
	return &service.TransferResult{}, nil
}

func TestRun_SeedsEmptyDatabase(t *testing.T) {
	svc := newRecordingService()

	require.NoError(t, Run(context.Background(), svc))

	require.Len(t, svc.customers, 4)
	assert.Equal(t, "Mohammed El Alaoui", svc.customers[0].Name)
	require.Len(t, svc.accounts, 8)
	assert.Len(t, svc.activated, 8)
	assert.Len(t, svc.transfers, 4)

	for i, a := range svc.accounts {
		switch v := a.Variant.(type) {
		case domain.CurrentAccount:
			assert.Equal(t, 0, i%2, "current account opened first")
			assert.True(t, decimal.NewFromInt(50000).Equal(a.Balance))
			assert.True(t, decimal.NewFromInt(10000).Equal(v.Overdraft))
		case domain.SavingAccount:
			assert.True(t, decimal.NewFromInt(25000).Equal(a.Balance))
			assert.True(t, decimal.RequireFromString("4.5").Equal(v.InterestRate))
		}

		assert.Len(t, svc.credits[a.ID], 3)
		require.Len(t, svc.debits[a.ID], 3+shoppingDebits)
		for _, amt := range svc.debits[a.ID][3:] {
			assert.True(t, amt.GreaterThanOrEqual(decimal.NewFromInt(100)), amt.String())
			assert.True(t, amt.LessThan(decimal.NewFromInt(1000)), amt.String())
		}
	}

	first := svc.transfers[0]
	assert.Equal(t, svc.accounts[0].ID, first.From)
	assert.Equal(t, svc.accounts[1].ID, first.To)
	assert.True(t, decimal.NewFromInt(1000).Equal(first.Amount))
}

func TestRun_SkipsWhenCustomersExist(t *testing.T) {
	svc := newRecordingService()
	svc.existing = []domain.Customer{{ID: 1, Name: "Zakaria Naji"}}

	require.NoError(t, Run(context.Background(), svc))

	assert.Empty(t, svc.customers)
	assert.Empty(t, svc.accounts)
}

func TestRun_StopsOnFirstError(t *testing.T) {
	svc := newRecordingService()
	svc.debitErr = domain.ErrBalanceNotSufficient

	err := Run(context.Background(), svc)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBalanceNotSufficient))
	assert.Contains(t, err.Error(), "Mohammed El Alaoui")
	assert.Len(t, svc.customers, 1)
	assert.Empty(t, svc.transfers)
}

func TestShoppingAmount_HasCentPrecision(t *testing.T) {
	for range 100 {
		amt := shoppingAmount()
		assert.LessOrEqual(t, -amt.Exponent(), int32(2))
		assert.True(t, amt.GreaterThanOrEqual(decimal.NewFromInt(100)))
		assert.True(t, amt.LessThan(decimal.NewFromInt(1000)))
	}
}
