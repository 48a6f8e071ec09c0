package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/josh-kwaku/digital-banking/internal/auth"
	"github.com/josh-kwaku/digital-banking/internal/handler"
	"github.com/josh-kwaku/digital-banking/internal/logging"
	"github.com/josh-kwaku/digital-banking/internal/repository"
)

type idempotencyStore interface {
	Get(ctx context.Context, key, scope string) (*repository.IdempotencyCacheEntry, error)
	Set(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
}

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
	anonymousScope    = "anonymous"
)

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass straight through. Keys are scoped to the
// authenticated operator, and reusing a key with a different request is a
// conflict.
func Idempotency(store idempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" || !mutates(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			log := logging.FromContext(ctx).With("idempotency_key", key)
			scope := idempotencyScope(ctx)
			fingerprint := requestFingerprint(r.Method, r.URL.Path, body)

			cached, err := store.Get(ctx, key, scope)
			if err != nil {
				log.Error("idempotency lookup failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if cached != nil {
				if cached.RequestHash != fingerprint {
					handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
					return
				}
				replay(w, cached, log)
				return
			}

			cw := newCaptureWriter(w, true)
			next.ServeHTTP(cw, r)

			// 5xx responses stay retryable under the same key.
			if cw.status >= http.StatusInternalServerError {
				return
			}

			now := time.Now().UTC()
			err = store.Set(ctx, &repository.IdempotencyCacheEntry{
				Key:          key,
				Scope:        scope,
				RequestHash:  fingerprint,
				StatusCode:   cw.status,
				ResponseBody: cw.body.Bytes(),
				CreatedAt:    now,
				ExpiresAt:    now.Add(idempotencyTTL),
			})
			if err != nil {
				log.Error("idempotency store failed", "error", err)
			}
		})
	}
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func idempotencyScope(ctx context.Context) string {
	if operator, ok := auth.OperatorFromContext(ctx); ok {
		return operator
	}
	return anonymousScope
}

func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func replay(w http.ResponseWriter, e *repository.IdempotencyCacheEntry, log *slog.Logger) {
	if len(e.ResponseBody) > 0 {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("X-Idempotent-Replayed", "true")
	w.WriteHeader(e.StatusCode)
	if _, err := w.Write(e.ResponseBody); err != nil {
		log.Error("idempotent replay write failed", "error", err)
	}
}
