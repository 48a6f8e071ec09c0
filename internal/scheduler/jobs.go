package scheduler

import (
	"context"
	"fmt"
	"time"
)

type idempotencyCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

type outboxPurger interface {
	PurgeDispatched(ctx context.Context, olderThan time.Time) (int64, error)
}

type Jobs struct {
	idempotency idempotencyCleaner
	outbox      outboxPurger
	retention   time.Duration
	now         func() time.Time
}

func NewJobs(idempotency idempotencyCleaner, outbox outboxPurger, retention time.Duration) *Jobs {
	return &Jobs{
		idempotency: idempotency,
		outbox:      outbox,
		retention:   retention,
		now:         time.Now,
	}
}

func (j *Jobs) CleanIdempotencyCache(ctx context.Context) (int64, error) {
	n, err := j.idempotency.CleanExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("CleanIdempotencyCache: %w", err)
	}
	return n, nil
}

func (j *Jobs) PurgeDispatchedEvents(ctx context.Context) (int64, error) {
	n, err := j.outbox.PurgeDispatched(ctx, j.now().Add(-j.retention))
	if err != nil {
		return 0, fmt.Errorf("PurgeDispatchedEvents: %w", err)
	}
	return n, nil
}

// RegisterAll schedules every housekeeping job on one schedule.
func (j *Jobs) RegisterAll(s *Scheduler, schedule string) error {
	if err := s.Register("idempotency_cleanup", schedule, j.CleanIdempotencyCache); err != nil {
		return fmt.Errorf("RegisterAll: %w", err)
	}
	if err := s.Register("outbox_purge", schedule, j.PurgeDispatchedEvents); err != nil {
		return fmt.Errorf("RegisterAll: %w", err)
	}
	return nil
}
