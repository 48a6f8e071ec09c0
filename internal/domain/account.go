package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountKindCurrent AccountKind = "CurrentAccount"
	AccountKindSaving  AccountKind = "SavingAccount"
)

type AccountStatus string

const (
	AccountStatusCreated   AccountStatus = "CREATED"
	AccountStatusActivated AccountStatus = "ACTIVATED"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

var allowedTransitions = map[AccountStatus][]AccountStatus{
	AccountStatusCreated:   {AccountStatusActivated, AccountStatusSuspended},
	AccountStatusActivated: {AccountStatusSuspended},
	AccountStatusSuspended: {AccountStatusActivated},
}

func (s AccountStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AccountVariant carries the variant-specific part of a bank account.
// Floor is the lowest balance the variant may reach after a debit.
type AccountVariant interface {
	Kind() AccountKind
	Floor() decimal.Decimal
}

type CurrentAccount struct {
	Overdraft decimal.Decimal
}

func (CurrentAccount) Kind() AccountKind { return AccountKindCurrent }

func (c CurrentAccount) Floor() decimal.Decimal { return c.Overdraft.Neg() }

// SavingAccount never goes below zero. InterestRate is a percentage and
// is stored for display only.
type SavingAccount struct {
	InterestRate decimal.Decimal
}

func (SavingAccount) Kind() AccountKind { return AccountKindSaving }

func (SavingAccount) Floor() decimal.Decimal { return decimal.Zero }

type BankAccount struct {
	ID         string
	CustomerID int64
	Balance    decimal.Decimal
	Status     AccountStatus
	Version    int64
	Variant    AccountVariant
	CreatedAt  time.Time
}

func (a *BankAccount) Kind() AccountKind {
	return a.Variant.Kind()
}

func (a *BankAccount) Floor() decimal.Decimal {
	return a.Variant.Floor()
}

func (a *BankAccount) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.Sub(amount).GreaterThanOrEqual(a.Floor())
}

// MoneyScale is the number of fractional digits stored for money and rates.
const MoneyScale = 4

// Column bounds: money is NUMERIC(19,4), interest rates NUMERIC(9,4).
var (
	moneyLimit = decimal.New(1, 15)
	rateLimit  = decimal.New(1, 5)
)

func fitsColumn(d, limit decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale)) && d.Abs().LessThan(limit)
}

// FitsMoney reports whether d can be stored as a balance or amount without
// rounding or overflow.
func FitsMoney(d decimal.Decimal) bool {
	return fitsColumn(d, moneyLimit)
}

func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !FitsMoney(amount) {
		return ErrInvalidAmount
	}
	return nil
}

func ValidateOpeningBalance(balance decimal.Decimal) error {
	if balance.IsNegative() || !FitsMoney(balance) {
		return ErrInvalidAmount
	}
	return nil
}

func ValidateOverdraft(overdraft decimal.Decimal) error {
	if overdraft.IsNegative() || !FitsMoney(overdraft) {
		return ErrInvalidRequest
	}
	return nil
}

func ValidateInterestRate(rate decimal.Decimal) error {
	if rate.IsNegative() || !fitsColumn(rate, rateLimit) {
		return ErrInvalidRequest
	}
	return nil
}
