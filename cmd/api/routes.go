package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/josh-kwaku/digital-banking/api"
	"github.com/josh-kwaku/digital-banking/internal/handler"
	"github.com/josh-kwaku/digital-banking/internal/middleware"
	"github.com/josh-kwaku/digital-banking/internal/ratelimit"
	"github.com/josh-kwaku/digital-banking/internal/repository"
	"github.com/josh-kwaku/digital-banking/internal/service"
)

type routerDeps struct {
	bank        *service.AccountService
	idempotency *repository.IdempotencyRepository
	limiter     *ratelimit.RedisLimiter
	health      *handler.HealthHandler
	jwtSecret   string
	corsOrigins []string
}

func newRouter(d routerDeps) http.Handler {
	customers := handler.NewCustomerHandler(d.bank)
	accounts := handler.NewAccountHandler(d.bank)
	operations := handler.NewOperationHandler(d.bank)
	docs := handler.NewDocsHandler(api.Spec, "/docs/openapi.yaml")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Idempotent-Replayed", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", d.health.Liveness)
	r.Get("/health/ready", d.health.Readiness)
	r.Get("/docs", docs.UI)
	r.Get("/docs/openapi.yaml", docs.Spec)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/customers", customers.List)
		r.Get("/customers/search", customers.Search)
		r.Get("/customers/by-email", customers.GetByEmail)
		r.Get("/customers/{id}", customers.Get)
		r.Get("/customers/{id}/accounts", customers.ListAccounts)

		r.Get("/accounts", accounts.List)
		r.Get("/accounts/{id}", accounts.Get)
		r.Get("/accounts/{id}/operations", accounts.Operations)
		r.Get("/accounts/{id}/history", accounts.History)
		r.Get("/transfers/{id}", operations.GetTransfer)

		r.Group(func(r chi.Router) {
			if d.jwtSecret != "" {
				r.Use(middleware.Auth(d.jwtSecret))
			}
			r.Use(middleware.Idempotency(d.idempotency))

			r.Post("/customers", customers.Create)
			r.Put("/customers/{id}", customers.Update)
			r.Delete("/customers/{id}", customers.Delete)

			r.Post("/accounts/current", accounts.CreateCurrent)
			r.Post("/accounts/saving", accounts.CreateSaving)
			r.Delete("/accounts/{id}", accounts.Delete)
			r.Post("/accounts/{id}/activate", accounts.Activate)
			r.Post("/accounts/{id}/suspend", accounts.Suspend)

			r.Group(func(r chi.Router) {
				if d.limiter != nil {
					r.Use(middleware.RateLimit(d.limiter))
				}
				r.Post("/accounts/credit", operations.Credit)
				r.Post("/accounts/debit", operations.Debit)
				r.Post("/accounts/transfer", operations.Transfer)
			})
		})
	})

	return r
}
