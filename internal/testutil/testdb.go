package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/josh-kwaku/digital-banking/internal/repository"
	"github.com/josh-kwaku/digital-banking/migrations"
)

// One container serves the whole test binary; every test gets its own
// freshly migrated database inside it. The container is reaped by
// testcontainers when the process exits.
var (
	pgOnce    sync.Once
	pgAdmin   *sql.DB
	pgBaseURL *url.URL
	pgErr     error
	dbSeq     atomic.Int64
)

func startPostgres() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("banking"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		pgErr = fmt.Errorf("start postgres container: %w", err)
		return
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgErr = fmt.Errorf("connection string: %w", err)
		return
	}
	if pgBaseURL, err = url.Parse(connStr); err != nil {
		pgErr = fmt.Errorf("parse connection string: %w", err)
		return
	}
	if pgAdmin, err = sql.Open("postgres", connStr); err != nil {
		pgErr = fmt.Errorf("open admin connection: %w", err)
	}
}

// SetupTestDB returns a connection to an isolated, migrated database that
// is dropped when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgOnce.Do(startPostgres)
	if pgErr != nil {
		t.Fatalf("postgres unavailable: %v", pgErr)
	}

	name := fmt.Sprintf("banking_test_%d", dbSeq.Add(1))
	if _, err := pgAdmin.ExecContext(ctx, "CREATE DATABASE "+name); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}

	dsn := *pgBaseURL
	dsn.Path = "/" + name

	db, err := sql.Open("postgres", dsn.String())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		if _, err := pgAdmin.ExecContext(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)"); err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	if err := repository.Migrate(ctx, db, migrations.FS); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
