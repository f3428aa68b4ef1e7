package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantEvent string
	}{
		{"unauthorized", http.StatusUnauthorized, "auth_rejected"},
		{"forbidden", http.StatusForbidden, "ownership_rejected"},
		{"throttled", http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"ok is silent", http.StatusOK, ""},
		{"not found is silent", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.WarnLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/v1/tasks", nil)
			req.Header.Set("X-Forwarded-For", "1.2.3.4")
			Audit(zap.New(core))(handler).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}

			entries := logs.All()
			if tt.wantEvent == "" {
				if len(entries) != 0 {
					t.Fatalf("expected no audit entries, got %d", len(entries))
				}
				return
			}
			if len(entries) != 1 {
				t.Fatalf("expected one audit entry, got %d", len(entries))
			}
			if entries[0].Message != tt.wantEvent {
				t.Errorf("event = %q, want %q", entries[0].Message, tt.wantEvent)
			}
			fields := entries[0].ContextMap()
			if fields["ip"] != "1.2.3.4" {
				t.Errorf("ip field = %v, want 1.2.3.4", fields["ip"])
			}
		})
	}
}

func TestStatusRecorderImplicitOK(t *testing.T) {
	t.Parallel()

	// A handler that writes a body without calling WriteHeader must still
	// record 200.
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	if _, err := rec.Write([]byte("ok")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if rec.statusCode() != http.StatusOK {
		t.Errorf("statusCode() = %d, want 200", rec.statusCode())
	}
	if rec.bytes != 2 {
		t.Errorf("bytes = %d, want 2", rec.bytes)
	}
}
