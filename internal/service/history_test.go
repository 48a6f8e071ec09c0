package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

// stubAccounts serves a single account; write paths are not used here.
type stubAccounts struct {
	accountRepo
	account domain.BankAccount
}

func (s *stubAccounts) GetByID(_ context.Context, id string) (*domain.BankAccount, error) {
	if id != s.account.ID {
		return nil, domain.ErrNotFound
	}
	a := s.account
	return &a, nil
}

type stubOperations struct {
	operationRepo
	total      int
	limit      int
	offset     int
	byTransfer map[uuid.UUID][]domain.AccountOperation
}

func (s *stubOperations) PageByAccountID(_ context.Context, _ string, limit, offset int) ([]domain.AccountOperation, int, error) {
	s.limit, s.offset = limit, offset
	return []domain.AccountOperation{}, s.total, nil
}

func (s *stubOperations) GetByTransferID(_ context.Context, id uuid.UUID) ([]domain.AccountOperation, error) {
	return s.byTransfer[id], nil
}

func newStubService(ops *stubOperations) *AccountService {
	accounts := &stubAccounts{account: domain.BankAccount{ID: "acc", Balance: decimal.NewFromInt(40)}}
	return NewAccountService(nil, accounts, ops, nil, nil, 0)
}

func TestAccountHistoryPage_OffsetAndPageCount(t *testing.T) {
	tests := []struct {
		name          string
		page, size    int
		total         int
		wantOffset    int
		wantPageCount int
	}{
		{"first page", 0, 5, 12, 0, 3},
		{"exact multiple", 2, 4, 8, 8, 2},
		{"partial last page", 2, 4, 9, 8, 3},
		{"no operations", 0, 10, 0, 0, 0},
		{"largest size", 3, domain.MaxHistoryPageSize, 1, 3 * domain.MaxHistoryPageSize, 1},
		{"offset at int limit", math.MaxInt / 100, 100, math.MaxInt, (math.MaxInt / 100) * 100, math.MaxInt/100 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := &stubOperations{total: tt.total}
			svc := newStubService(ops)

			h, err := svc.AccountHistoryPage(context.Background(), "acc", tt.page, tt.size)
			require.NoError(t, err)

			assert.Equal(t, tt.size, ops.limit)
			assert.Equal(t, tt.wantOffset, ops.offset)
			assert.GreaterOrEqual(t, ops.offset, 0)
			assert.Equal(t, tt.wantPageCount, h.TotalPages)
			assert.Equal(t, tt.page, h.CurrentPage)
		})
	}
}

func TestAccountHistoryPage_UnknownAccount(t *testing.T) {
	svc := newStubService(&stubOperations{})

	_, err := svc.AccountHistoryPage(context.Background(), "missing", 0, 5)
	assert.ErrorIs(t, err, domain.ErrBankAccountNotFound)
}

func TestGetTransfer_Legs(t *testing.T) {
	complete := uuid.New()
	oneLeg := uuid.New()
	ops := &stubOperations{byTransfer: map[uuid.UUID][]domain.AccountOperation{
		complete: {
			{ID: 1, AccountID: "a", Type: domain.OperationTypeDebit, Amount: decimal.NewFromInt(30)},
			{ID: 2, AccountID: "b", Type: domain.OperationTypeCredit, Amount: decimal.NewFromInt(30)},
		},
		oneLeg: {
			{ID: 3, AccountID: "a", Type: domain.OperationTypeDebit, Amount: decimal.NewFromInt(5)},
		},
	}}
	svc := newStubService(ops)
	ctx := context.Background()

	res, err := svc.GetTransfer(ctx, complete)
	require.NoError(t, err)
	assert.Equal(t, complete, res.TransferID)
	assert.Equal(t, "a", res.Debit.AccountID)
	assert.Equal(t, "b", res.Credit.AccountID)

	_, err = svc.GetTransfer(ctx, oneLeg)
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)

	_, err = svc.GetTransfer(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}
