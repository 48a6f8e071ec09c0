package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OperationType string

const (
	OperationTypeDebit  OperationType = "DEBIT"
	OperationTypeCredit OperationType = "CREDIT"
)

type AccountOperation struct {
	ID            int64
	AccountID     string
	Type          OperationType
	Amount        decimal.Decimal
	Description   string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	TransferID    *uuid.UUID
	OperationDate time.Time
}

// MaxHistoryPageSize caps the number of operations returned per history page.
const MaxHistoryPageSize = 100

// AccountHistory is one page of an account's operations, newest first.
type AccountHistory struct {
	AccountID   string
	Balance     decimal.Decimal
	CurrentPage int
	PageSize    int
	TotalPages  int
	Operations  []AccountOperation
}
