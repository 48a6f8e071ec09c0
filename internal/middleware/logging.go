package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/josh-kwaku/digital-banking/internal/logging"
)

var quietPrefixes = []string{"/health", "/docs"}

// Logging attaches a request-scoped logger and writes one line per request.
// Probe and docs traffic is not logged.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range quietPrefixes {
			if strings.HasPrefix(r.URL.Path, p) {
				next.ServeHTTP(w, r)
				return
			}
		}

		start := time.Now()
		logger := slog.Default().With("request_id", RequestIDFromContext(r.Context()))
		r = r.WithContext(logging.WithLogger(r.Context(), logger))

		cw := newCaptureWriter(w, false)
		next.ServeHTTP(cw, r)

		level := slog.LevelInfo
		if cw.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", cw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
