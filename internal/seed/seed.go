// Package seed loads a small demo book of customers, accounts and
// operations into an empty database.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/service"
)

type bankService interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	SaveCustomer(ctx context.Context, req service.CustomerRequest) (*domain.Customer, error)
	SaveCurrentAccount(ctx context.Context, initialBalance, overdraft decimal.Decimal, customerID int64) (*domain.BankAccount, error)
	SaveSavingAccount(ctx context.Context, initialBalance, interestRate decimal.Decimal, customerID int64) (*domain.BankAccount, error)
	ActivateAccount(ctx context.Context, id string) (*domain.BankAccount, error)
	Credit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.AccountOperation, error)
	Debit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.AccountOperation, error)
	Transfer(ctx context.Context, req service.TransferRequest) (*service.TransferResult, error)
}

var customers = []service.CustomerRequest{
	{Name: "Mohammed El Alaoui", Email: "mohammed.alaoui@gmail.com"},
	{Name: "Zakaria Naji", Email: "zakaria.naji@gmail.com"},
	{Name: "Yasser Benhima", Email: "yasser.benhima@gmail.com"},
	{Name: "Ilyas Tahiri", Email: "ilyas.tahiri@gmail.com"},
}

type movement struct {
	amount      int64
	description string
}

var (
	credits = []movement{
		{5000, "Salary deposit"},
		{2500, "Freelance payment"},
		{1000, "Tax refund"},
	}
	debits = []movement{
		{1200, "Rent payment"},
		{500, "Grocery shopping"},
		{300, "Utility bills"},
	}
)

const shoppingDebits = 5

// Run seeds the demo data unless customers already exist.
func Run(ctx context.Context, svc bankService) error {
	existing, err := svc.ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("seed.Run: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("seed skipped, customers already present", "count", len(existing))
		return nil
	}

	for _, req := range customers {
		if err := seedCustomer(ctx, svc, req); err != nil {
			return fmt.Errorf("seed.Run: %s: %w", req.Name, err)
		}
		slog.Info("seeded customer", "name", req.Name)
	}
	return nil
}

func seedCustomer(ctx context.Context, svc bankService, req service.CustomerRequest) error {
	c, err := svc.SaveCustomer(ctx, req)
	if err != nil {
		return err
	}

	current, err := svc.SaveCurrentAccount(ctx, decimal.NewFromInt(50000), decimal.NewFromInt(10000), c.ID)
	if err != nil {
		return err
	}
	saving, err := svc.SaveSavingAccount(ctx, decimal.NewFromInt(25000), decimal.RequireFromString("4.5"), c.ID)
	if err != nil {
		return err
	}

	for _, id := range []string{current.ID, saving.ID} {
		if _, err := svc.ActivateAccount(ctx, id); err != nil {
			return err
		}
		if err := seedMovements(ctx, svc, id); err != nil {
			return err
		}
	}

	_, err = svc.Transfer(ctx, service.TransferRequest{
		From:   current.ID,
		To:     saving.ID,
		Amount: decimal.NewFromInt(1000),
	})
	return err
}

func seedMovements(ctx context.Context, svc bankService, accountID string) error {
	for _, m := range credits {
		if _, err := svc.Credit(ctx, accountID, decimal.NewFromInt(m.amount), m.description); err != nil {
			return err
		}
	}
	for _, m := range debits {
		if _, err := svc.Debit(ctx, accountID, decimal.NewFromInt(m.amount), m.description); err != nil {
			return err
		}
	}
	for i := range shoppingDebits {
		if _, err := svc.Debit(ctx, accountID, shoppingAmount(), fmt.Sprintf("Shopping expense #%d", i+1)); err != nil {
			return err
		}
	}
	return nil
}

// shoppingAmount is a random amount in [100, 1000) with cent precision.
func shoppingAmount() decimal.Decimal {
	cents := 10000 + rand.Int64N(90000)
	return decimal.New(cents, -2)
}
