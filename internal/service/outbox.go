package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

type accountCreatedPayload struct {
	AccountID   string             `json:"account_id"`
	CustomerID  int64              `json:"customer_id"`
	AccountType domain.AccountKind `json:"account_type"`
	Balance     decimal.Decimal    `json:"balance"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

type balanceChangedPayload struct {
	AccountID   string               `json:"account_id"`
	OperationID int64                `json:"operation_id"`
	Type        domain.OperationType `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Balance     decimal.Decimal      `json:"balance"`
	TransferID  *uuid.UUID           `json:"transfer_id,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

type statusChangedPayload struct {
	AccountID  string               `json:"account_id"`
	From       domain.AccountStatus `json:"from"`
	To         domain.AccountStatus `json:"to"`
	OccurredAt time.Time            `json:"occurred_at"`
}

func (s *AccountService) writeOutboxEvent(ctx context.Context, tx *sql.Tx, eventType domain.OutboxEventType, payload any, now time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("writeOutboxEvent: marshal: %w", err)
	}

	event := &domain.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   body,
		Status:    domain.OutboxEventStatusPending,
		CreatedAt: now,
	}
	if err := s.outbox.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("writeOutboxEvent: %w", err)
	}
	return nil
}
