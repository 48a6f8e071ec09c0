package service

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		keyword string
		want    string
	}{
		{"", "%%"},
		{"moh", "%moh%"},
		{"  naji ", "%naji%"},
		{"ya*er", "%ya%er%"},
		{"100%", `%100\%%`},
		{"el_alaoui", `%el\_alaoui%`},
		{`back\slash`, `%back\\slash%`},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, likePattern(tt.keyword))
		})
	}
}

// The service below has no repositories; every case must fail before I/O.
func TestInputValidationBeforeIO(t *testing.T) {
	svc := &AccountService{}
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "credit zero amount",
			call: func() error {
				_, err := svc.Credit(ctx, "acc", decimal.Zero, "x")
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "debit negative amount",
			call: func() error {
				_, err := svc.Debit(ctx, "acc", decimal.NewFromInt(-5), "x")
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "transfer zero amount",
			call: func() error {
				_, err := svc.Transfer(ctx, TransferRequest{From: "a", To: "b", Amount: decimal.Zero})
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "transfer to same account",
			call: func() error {
				_, err := svc.Transfer(ctx, TransferRequest{From: "a", To: "a", Amount: decimal.NewFromInt(10)})
				return err
			},
			wantErr: domain.ErrSelfTransfer,
		},
		{
			name: "negative initial balance",
			call: func() error {
				_, err := svc.SaveCurrentAccount(ctx, decimal.NewFromInt(-1), decimal.Zero, 1)
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative overdraft",
			call: func() error {
				_, err := svc.SaveCurrentAccount(ctx, decimal.Zero, decimal.NewFromInt(-1), 1)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "negative interest rate",
			call: func() error {
				_, err := svc.SaveSavingAccount(ctx, decimal.Zero, decimal.NewFromFloat(-0.5), 1)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "credit below storage precision",
			call: func() error {
				_, err := svc.Credit(ctx, "acc", decimal.RequireFromString("0.00004"), "x")
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "debit with fifth decimal",
			call: func() error {
				_, err := svc.Debit(ctx, "acc", decimal.RequireFromString("1.00005"), "x")
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "transfer beyond column range",
			call: func() error {
				_, err := svc.Transfer(ctx, TransferRequest{From: "a", To: "b", Amount: decimal.New(1, 15)})
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "initial balance with fifth decimal",
			call: func() error {
				_, err := svc.SaveSavingAccount(ctx, decimal.RequireFromString("1.00001"), decimal.Zero, 1)
				return err
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "overdraft beyond column range",
			call: func() error {
				_, err := svc.SaveCurrentAccount(ctx, decimal.Zero, decimal.New(1, 15), 1)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "interest rate beyond column range",
			call: func() error {
				_, err := svc.SaveSavingAccount(ctx, decimal.Zero, decimal.NewFromInt(100000), 1)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "interest rate with fifth decimal",
			call: func() error {
				_, err := svc.SaveSavingAccount(ctx, decimal.Zero, decimal.RequireFromString("4.12345"), 1)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "customer without name",
			call: func() error {
				_, err := svc.SaveCustomer(ctx, CustomerRequest{Name: "  ", Email: "a@b.c"})
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "history page size zero",
			call: func() error {
				_, err := svc.AccountHistoryPage(ctx, "acc", 0, 0)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "history page size above maximum",
			call: func() error {
				_, err := svc.AccountHistoryPage(ctx, "acc", 0, domain.MaxHistoryPageSize+1)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "history page size max int",
			call: func() error {
				_, err := svc.AccountHistoryPage(ctx, "acc", 1, math.MaxInt)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "history offset overflows",
			call: func() error {
				_, err := svc.AccountHistoryPage(ctx, "acc", math.MaxInt/2, 4)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "history negative page",
			call: func() error {
				_, err := svc.AccountHistoryPage(ctx, "acc", -1, 10)
				return err
			},
			wantErr: domain.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
