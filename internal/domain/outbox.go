package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxEventStatus string

const (
	OutboxEventStatusPending    OutboxEventStatus = "pending"
	OutboxEventStatusDispatched OutboxEventStatus = "dispatched"
	OutboxEventStatusFailed     OutboxEventStatus = "failed"
)

type OutboxEventType string

const (
	OutboxEventTypeAccountCreated       OutboxEventType = "account.created"
	OutboxEventTypeAccountCredited      OutboxEventType = "account.credited"
	OutboxEventTypeAccountDebited       OutboxEventType = "account.debited"
	OutboxEventTypeAccountStatusChanged OutboxEventType = "account.status_changed"
)

type OutboxEvent struct {
	ID          uuid.UUID
	EventType   OutboxEventType
	Payload     json.RawMessage
	Status      OutboxEventStatus
	Attempts    int
	LastAttempt *time.Time
	CreatedAt   time.Time
}
