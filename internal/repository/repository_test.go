package repository_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/repository"
	"github.com/josh-kwaku/digital-banking/internal/testutil"
)

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOutboxRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []uuid.UUID
	inTx(t, db, func(tx *sql.Tx) {
		for i := range 3 {
			e := &domain.OutboxEvent{
				ID:        uuid.New(),
				EventType: domain.OutboxEventTypeAccountCredited,
				Payload:   json.RawMessage(`{"amount":"10"}`),
				Status:    domain.OutboxEventStatusPending,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, repo.Create(ctx, tx, e))
			ids = append(ids, e.ID)
		}
	})

	pending, err := repo.GetPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[1], pending[1].ID)
	assert.JSONEq(t, `{"amount":"10"}`, string(pending[0].Payload))

	require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.OutboxEventStatusDispatched))
	require.NoError(t, repo.UpdateStatus(ctx, ids[1], domain.OutboxEventStatusPending))

	pending, err = repo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[1], pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
	require.NotNil(t, pending[0].LastAttempt)

	err = repo.UpdateStatus(ctx, uuid.New(), domain.OutboxEventStatusDispatched)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	purged, err := repo.PurgeDispatched(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	pending, err = repo.GetPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestOutboxRepository_PendingKeepsInsertionOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOutboxRepository(db)
	ctx := context.Background()

	// Both legs of a transfer share one timestamp.
	now := time.Now().UTC()
	var ids []uuid.UUID
	inTx(t, db, func(tx *sql.Tx) {
		for _, eventType := range []domain.OutboxEventType{
			domain.OutboxEventTypeAccountDebited,
			domain.OutboxEventTypeAccountCredited,
			domain.OutboxEventTypeAccountDebited,
			domain.OutboxEventTypeAccountCredited,
			domain.OutboxEventTypeAccountStatusChanged,
		} {
			e := &domain.OutboxEvent{
				ID:        uuid.New(),
				EventType: eventType,
				Payload:   json.RawMessage(`{}`),
				Status:    domain.OutboxEventStatusPending,
				CreatedAt: now,
			}
			require.NoError(t, repo.Create(ctx, tx, e))
			ids = append(ids, e.ID)
		}
	})

	// A later event with an earlier clock reading still comes last.
	late := &domain.OutboxEvent{
		ID:        uuid.New(),
		EventType: domain.OutboxEventTypeAccountCreated,
		Payload:   json.RawMessage(`{}`),
		Status:    domain.OutboxEventStatusPending,
		CreatedAt: now.Add(-time.Second),
	}
	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.Create(ctx, tx, late))
	})
	ids = append(ids, late.ID)

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	got := make([]uuid.UUID, len(pending))
	for i, e := range pending {
		got[i] = e.ID
	}
	assert.Equal(t, ids, got)

	require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.OutboxEventStatusDispatched))
	pending, err = repo.GetPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[1], pending[0].ID)
	assert.Equal(t, ids[2], pending[1].ID)
}

func TestIdempotencyRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	got, err := repo.Get(ctx, "k1", "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
		Key: "k1", Scope: "alice", RequestHash: "h1", StatusCode: 201,
		ResponseBody: []byte(`{"success":true}`), CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	t.Run("live entry is not overwritten", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
			Key: "k1", Scope: "alice", RequestHash: "h2", StatusCode: 200,
			ResponseBody: []byte(`{}`), CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}))

		got, err := repo.Get(ctx, "k1", "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "h1", got.RequestHash)
		assert.Equal(t, 201, got.StatusCode)
	})

	t.Run("scopes are independent", func(t *testing.T) {
		got, err := repo.Get(ctx, "k1", "bob")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty body is stored", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
			Key: "k-delete", Scope: "alice", RequestHash: "h", StatusCode: 204,
			CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}))

		got, err := repo.Get(ctx, "k-delete", "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 204, got.StatusCode)
		assert.Empty(t, got.ResponseBody)
	})

	t.Run("expired entries are invisible, replaceable and cleaned", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
			Key: "k-old", Scope: "alice", RequestHash: "old", StatusCode: 201,
			ResponseBody: []byte(`{}`), CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
		}))

		got, err := repo.Get(ctx, "k-old", "alice")
		require.NoError(t, err)
		assert.Nil(t, got)

		n, err := repo.CleanExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestAccountRepository_VersionedWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	c := testutil.SeedCustomer(t, db, "Zakaria Naji", "zakaria.naji@gmail.com")
	a := testutil.SeedCurrentAccount(t, db, c.ID, "100", "50")

	inTx(t, db, func(tx *sql.Tx) {
		locked, err := repo.GetForUpdate(ctx, tx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), locked.Version)
		require.NoError(t, repo.UpdateBalance(ctx, tx, a.ID, decimal.NewFromInt(70), locked.Version+1))
	})

	inTx(t, db, func(tx *sql.Tx) {
		err := repo.UpdateBalance(ctx, tx, a.ID, decimal.NewFromInt(10), 2)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = repo.UpdateBalance(ctx, tx, a.ID, decimal.NewFromInt(-51), 3)
	assert.ErrorIs(t, err, domain.ErrBalanceNotSufficient)
	require.NoError(t, tx.Rollback())

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(got.Balance))
	assert.Equal(t, int64(2), got.Version)
	require.IsType(t, domain.CurrentAccount{}, got.Variant)
	assert.True(t, decimal.NewFromInt(50).Equal(got.Variant.(domain.CurrentAccount).Overdraft))

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.NewString()), domain.ErrNotFound)
}
