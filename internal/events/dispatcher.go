package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

type outboxStore interface {
	GetPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OutboxEventStatus) error
}

type DispatcherConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Dispatcher drains pending outbox events to a Publisher. An event that
// keeps failing is parked as failed after MaxAttempts.
type Dispatcher struct {
	store     outboxStore
	publisher Publisher
	logger    *slog.Logger
	cfg       DispatcherConfig
}

func NewDispatcher(store outboxStore, publisher Publisher, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Dispatcher{store: store, publisher: publisher, logger: logger, cfg: cfg}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("outbox dispatcher started", "interval", d.cfg.Interval, "batch_size", d.cfg.BatchSize)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.poll(ctx)
		}
	}
}

func (d *Dispatcher) poll(ctx context.Context) {
	events, err := d.store.GetPending(ctx, d.cfg.BatchSize)
	if err != nil {
		d.logger.Error("failed to fetch pending outbox events", "error", err)
		return
	}

	for _, event := range events {
		if err := d.dispatch(ctx, event); err != nil {
			d.logger.Error("failed to dispatch outbox event",
				"event_id", event.ID,
				"event_type", event.EventType,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event domain.OutboxEvent) error {
	pubErr := d.publisher.Publish(ctx, event)
	if pubErr == nil {
		if err := d.store.UpdateStatus(ctx, event.ID, domain.OutboxEventStatusDispatched); err != nil {
			return fmt.Errorf("dispatch: mark dispatched: %w", err)
		}
		return nil
	}

	next := domain.OutboxEventStatusPending
	if event.Attempts+1 >= d.cfg.MaxAttempts {
		next = domain.OutboxEventStatusFailed
		d.logger.Warn("outbox event exhausted attempts",
			"event_id", event.ID,
			"attempts", event.Attempts+1,
		)
	}
	if err := d.store.UpdateStatus(ctx, event.ID, next); err != nil {
		return fmt.Errorf("dispatch: record attempt: %w", err)
	}
	return fmt.Errorf("dispatch: %w", pubErr)
}
