package middleware

import (
	"net/http"

	logpkg "github.com/studyhub/studyhub-api/internal/logger"
	"github.com/studyhub/studyhub-api/internal/request"
	"go.uber.org/zap"
)

// auditEvent maps response codes worth an audit trail to their event names.
var auditEvent = map[int]string{
	http.StatusUnauthorized:    "auth_rejected",
	http.StatusForbidden:       "ownership_rejected",
	http.StatusTooManyRequests: "rate_limit_exceeded",
}

// Audit logs denied requests for security monitoring. Successful requests
// pass through silently; the logging middleware covers those.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			event, ok := auditEvent[rec.statusCode()]
			if !ok {
				return
			}
			logger.Warn(event,
				zap.Int("status_code", rec.statusCode()),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			)
		})
	}
}
