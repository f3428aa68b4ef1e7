package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds handler execution when no explicit timeout
// is configured.
const DefaultRequestTimeout = 30 * time.Second

// Timeout enforces a deadline on each request. The handler sees a context
// that expires with the deadline, and slow responses are replaced with a
// 503 by http.TimeoutHandler.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		wrapped := http.TimeoutHandler(next, timeout, "Request Timeout")
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			wrapped.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
