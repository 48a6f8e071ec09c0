package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/digital-banking/internal/config"
	"github.com/josh-kwaku/digital-banking/internal/events"
	"github.com/josh-kwaku/digital-banking/internal/handler"
	"github.com/josh-kwaku/digital-banking/internal/logging"
	"github.com/josh-kwaku/digital-banking/internal/ratelimit"
	"github.com/josh-kwaku/digital-banking/internal/repository"
	"github.com/josh-kwaku/digital-banking/internal/scheduler"
	"github.com/josh-kwaku/digital-banking/internal/seed"
	"github.com/josh-kwaku/digital-banking/internal/service"
	"github.com/josh-kwaku/digital-banking/migrations"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("digital-banking", cfg.LogLevel, cfg.AppEnv)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		PingAttempts:     30,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db, migrations.FS); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	customerRepo := repository.NewCustomerRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	bank := service.NewAccountService(customerRepo, accountRepo, operationRepo, outboxRepo, db, cfg.DBQueryTimeout)

	if cfg.SeedData {
		if err := seed.Run(ctx, bank); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var workers sync.WaitGroup
	dispatcher := events.NewDispatcher(outboxRepo, publisher, logger.With("component", "outbox"), events.DispatcherConfig{
		Interval:    cfg.OutboxPollInterval,
		BatchSize:   cfg.OutboxBatchSize,
		MaxAttempts: cfg.OutboxMaxAttempts,
	})
	workers.Add(1)
	go func() {
		defer workers.Done()
		dispatcher.Start(ctx)
	}()

	sched := scheduler.New(logger.With("component", "scheduler"), cfg.DBQueryTimeout)
	jobs := scheduler.NewJobs(idempotencyRepo, outboxRepo, cfg.OutboxRetention)
	if err := jobs.RegisterAll(sched, cfg.CleanupSchedule); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	sched.Start()

	checks := []handler.HealthCheck{{Name: "database", Ping: db.PingContext}}

	var limiter *ratelimit.RedisLimiter
	if cfg.RedisURL != "" {
		rdb, err := newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		limiter = ratelimit.NewRedisLimiter(rdb, "banking:ratelimit", cfg.RateLimitPerMinute, time.Minute)
		checks = append(checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		logger.Info("rate limiting enabled", "per_minute", cfg.RateLimitPerMinute)
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, write routes are unauthenticated")
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: newRouter(routerDeps{
			bank:        bank,
			idempotency: idempotencyRepo,
			limiter:     limiter,
			health:      handler.NewHealthHandler(checks...),
			jwtSecret:   cfg.JWTSecret,
			corsOrigins: cfg.CORSAllowedOrigins,
		}),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	stop()
	<-sched.Stop().Done()
	workers.Wait()

	logger.Info("server stopped")
	return nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, outbox events will be logged only")
		return events.NewLogPublisher(logger.With("component", "events")), nil
	}

	p, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	logger.Info("publishing outbox events to rabbitmq", "exchange", cfg.EventsExchange)
	return p, nil
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
