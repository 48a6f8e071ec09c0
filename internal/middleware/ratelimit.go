package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/josh-kwaku/digital-banking/internal/auth"
	"github.com/josh-kwaku/digital-banking/internal/handler"
	"github.com/josh-kwaku/digital-banking/internal/logging"
	"github.com/josh-kwaku/digital-banking/internal/ratelimit"
)

type limiter interface {
	Allow(ctx context.Context, subject string) (ratelimit.Decision, error)
}

// RateLimit throttles requests per operator, or per client IP when the
// request is unauthenticated. A limiter failure lets the request through.
func RateLimit(l limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := rateLimitSubject(r)

			decision, err := l.Allow(r.Context(), subject)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rate limiter unavailable", "subject", subject, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				secs := int(math.Ceil(decision.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				handler.RespondAppError(w, handler.ErrRateLimited, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitSubject(r *http.Request) string {
	if operator, ok := auth.OperatorFromContext(r.Context()); ok {
		return "operator:" + operator
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
