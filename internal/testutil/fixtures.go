package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

func SeedCustomer(t *testing.T, db *sql.DB, name, email string) *domain.Customer {
	t.Helper()

	c := &domain.Customer{Name: name, Email: email}
	err := db.QueryRow(
		`INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING id, created_at`,
		name, email,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		t.Fatalf("seed customer %s: %v", email, err)
	}
	return c
}

func SeedCurrentAccount(t *testing.T, db *sql.DB, customerID int64, balance, overdraft string) *domain.BankAccount {
	t.Helper()
	return seedAccount(t, db, customerID, balance, domain.CurrentAccount{Overdraft: decimal.RequireFromString(overdraft)})
}

func SeedSavingAccount(t *testing.T, db *sql.DB, customerID int64, balance, interestRate string) *domain.BankAccount {
	t.Helper()
	return seedAccount(t, db, customerID, balance, domain.SavingAccount{InterestRate: decimal.RequireFromString(interestRate)})
}

// seedAccount inserts an ACTIVATED account and, for a positive balance, the
// opening CREDIT that backs it.
func seedAccount(t *testing.T, db *sql.DB, customerID int64, balance string, variant domain.AccountVariant) *domain.BankAccount {
	t.Helper()

	a := &domain.BankAccount{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Balance:    decimal.RequireFromString(balance),
		Status:     domain.AccountStatusActivated,
		Version:    1,
		Variant:    variant,
		CreatedAt:  time.Now().UTC(),
	}

	var overdraft, interestRate decimal.NullDecimal
	switch v := variant.(type) {
	case domain.CurrentAccount:
		overdraft = decimal.NewNullDecimal(v.Overdraft)
	case domain.SavingAccount:
		interestRate = decimal.NewNullDecimal(v.InterestRate)
	}

	_, err := db.Exec(
		`INSERT INTO bank_accounts (id, customer_id, account_type, balance, overdraft, interest_rate, status, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.CustomerID, a.Kind(), a.Balance, overdraft, interestRate, a.Status, a.Version, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed %s for customer %d: %v", a.Kind(), customerID, err)
	}

	if a.Balance.IsPositive() {
		_, err = db.Exec(
			`INSERT INTO account_operations (account_id, operation_type, amount, description, balance_before, balance_after, operation_date)
			 VALUES ($1, 'CREDIT', $2, 'Opening balance', 0, $2, $3)`,
			a.ID, a.Balance, a.CreatedAt,
		)
		if err != nil {
			t.Fatalf("seed opening operation for %s: %v", a.ID, err)
		}
	}
	return a
}

func SetAccountStatus(t *testing.T, db *sql.DB, accountID string, status domain.AccountStatus) {
	t.Helper()

	if _, err := db.Exec(`UPDATE bank_accounts SET status = $1 WHERE id = $2`, status, accountID); err != nil {
		t.Fatalf("set account status %s: %v", accountID, err)
	}
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID string) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM bank_accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

// GetNetOperations sums CREDIT minus DEBIT operations of an account.
func GetNetOperations(t *testing.T, db *sql.DB, accountID string) decimal.Decimal {
	t.Helper()

	var net decimal.Decimal
	err := db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN operation_type = 'CREDIT' THEN amount ELSE -amount END), 0)
		 FROM account_operations WHERE account_id = $1`, accountID,
	).Scan(&net)
	if err != nil {
		t.Fatalf("sum operations %s: %v", accountID, err)
	}
	return net
}

func CountOperations(t *testing.T, db *sql.DB, accountID string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM account_operations WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count operations for account %s: %v", accountID, err)
	}
	return count
}

func CountOutboxEvents(t *testing.T, db *sql.DB, eventType domain.OutboxEventType) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM outbox_events WHERE event_type = $1`, eventType).Scan(&count)
	if err != nil {
		t.Fatalf("count outbox events %s: %v", eventType, err)
	}
	return count
}
