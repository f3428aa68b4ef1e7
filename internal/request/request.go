// Package request holds per-request helpers shared by the middleware chain
// and the resource handlers: the authenticated user carried on the context
// and client address extraction.
package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/studyhub/studyhub-api/internal/models"
)

type userKey struct{}

// UserContextKey returns the context key the authenticated user is stored
// under. Exposed for tests that inject non-user values.
func UserContextKey() any { return userKey{} }

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user on the request, or nil when
// the auth middleware did not run or stored something else.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey{}).(*models.User)
	return u
}

// ClientIP returns the originating client address. Proxy headers win over the
// socket peer, and only the first X-Forwarded-For hop counts.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	return r.RemoteAddr
}
