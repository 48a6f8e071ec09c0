package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	n     int64
	err   error
	calls int
}

func (f *fakeCleaner) CleanExpired(context.Context) (int64, error) {
	f.calls++
	return f.n, f.err
}

type fakePurger struct {
	olderThan time.Time
}

func (f *fakePurger) PurgeDispatched(_ context.Context, olderThan time.Time) (int64, error) {
	f.olderThan = olderThan
	return 3, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegister_InvalidSchedule(t *testing.T) {
	s := New(testLogger(), time.Second)
	err := s.Register("bad", "not a cron spec", func(context.Context) (int64, error) { return 0, nil })
	require.Error(t, err)
}

func TestRegisterAll_RunsJobs(t *testing.T) {
	cleaner := &fakeCleaner{n: 7}
	purger := &fakePurger{}
	fixed := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)

	jobs := NewJobs(cleaner, purger, 24*time.Hour)
	jobs.now = func() time.Time { return fixed }

	s := New(testLogger(), time.Second)
	require.NoError(t, jobs.RegisterAll(s, "@hourly"))

	entries := s.cron.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		e.Job.Run()
	}

	assert.Equal(t, 1, cleaner.calls)
	assert.Equal(t, fixed.Add(-24*time.Hour), purger.olderThan)
}

func TestJobs_PropagatesErrors(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("db down")}
	jobs := NewJobs(cleaner, &fakePurger{}, time.Hour)

	_, err := jobs.CleanIdempotencyCache(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CleanIdempotencyCache")
}

func TestStartStop(t *testing.T) {
	s := New(testLogger(), time.Second)
	s.Start()

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
