package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-api/internal/database"
)

const corsDefaultMaxAge = 86400

// CORSReloader applies a cross-origin policy stored in the database,
// re-reading it on an interval so operators can change allowed origins
// without a restart. Until a row exists the FRONTEND_URL fallback applies.
type CORSReloader struct {
	repo     *database.CorsConfigRepository
	fallback string
	log      *zap.Logger
	interval time.Duration

	mu      sync.RWMutex
	current *cors.Cors
}

// NewCORSReloader builds the reloader and loads the initial policy.
func NewCORSReloader(repo *database.CorsConfigRepository, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	cr := &CORSReloader{
		repo:     repo,
		fallback: frontendURLFallback,
		log:      log,
		interval: reloadInterval,
	}
	cr.reload(context.Background())
	return cr
}

// Middleware applies the current policy to each request.
func (cr *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cr.mu.RLock()
			policy := cr.current
			cr.mu.RUnlock()

			if policy == nil {
				next.ServeHTTP(w, r)
				return
			}
			policy.ServeHTTP(w, r, next.ServeHTTP)
		})
	}
}

// Start re-reads the stored policy on the configured interval until ctx is
// cancelled.
func (cr *CORSReloader) Start(ctx context.Context) {
	if cr.interval <= 0 {
		return
	}
	ticker := time.NewTicker(cr.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cr.reload(ctx)
		}
	}
}

func (cr *CORSReloader) reload(ctx context.Context) {
	opts := cors.Options{
		AllowCredentials: true,
		MaxAge:           corsDefaultMaxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}

	cfg, err := cr.repo.Get(ctx)
	switch {
	case err != nil:
		cr.log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
		opts.AllowedOrigins = database.AllowedOriginsSlice(cr.fallback)
	case cfg == nil:
		opts.AllowedOrigins = database.AllowedOriginsSlice(cr.fallback)
	default:
		opts.AllowedOrigins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
		opts.AllowCredentials = cfg.AllowCredentials
		opts.MaxAge = cfg.MaxAge
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}

	policy := cors.New(opts)
	cr.mu.Lock()
	cr.current = policy
	cr.mu.Unlock()

	cr.log.Debug("cors_policy_loaded",
		zap.Strings("allowed_origins", opts.AllowedOrigins),
		zap.Bool("allow_credentials", opts.AllowCredentials),
	)
}
