package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-api/internal/database"
	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/request"
)

// defaultRatelimitRate applies until an operator stores a rate in the database.
const defaultRatelimitRate = "5-S"

// RateLimitReloader limits requests per client IP using a Redis-backed
// ulule/limiter, with the rate stored in the database and re-read on an
// interval. Store failures fail open; throttling must not take the API down
// with Redis.
type RateLimitReloader struct {
	store       limiter.Store
	repo        *database.RatelimitConfigRepository
	defaultRate string
	log         *zap.Logger
	interval    time.Duration

	mu      sync.RWMutex
	current *limiter.Limiter
}

// NewRateLimitReloader builds the reloader and loads the initial rate.
// Returns nil when the Redis store cannot be created.
func NewRateLimitReloader(redisClient *redis.Client, repo *database.RatelimitConfigRepository, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		log.Error("failed_to_create_redis_store_for_rate_limiter", zap.Error(err))
		return nil
	}
	rl := &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
	rl.reload(context.Background())
	return rl
}

// Middleware enforces the current rate per client IP. Responses carry the
// X-RateLimit-* headers; a reached limit answers 429 in the standard
// response envelope.
func (rl *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rl.mu.RLock()
			lim := rl.current
			rl.mu.RUnlock()

			if lim == nil {
				next.ServeHTTP(w, r)
				return
			}

			lctx, err := lim.Get(r.Context(), request.ClientIP(r))
			if err != nil {
				rl.log.Error("rate_limit_store_error", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"message":"Rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Start re-reads the stored rate on the configured interval until ctx is
// cancelled.
func (rl *RateLimitReloader) Start(ctx context.Context) {
	if rl.interval <= 0 {
		return
	}
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.reload(ctx)
		}
	}
}

func (rl *RateLimitReloader) reload(ctx context.Context) {
	rateStr := rl.defaultRate

	cfg, err := rl.repo.Get(ctx)
	switch {
	case err != nil:
		rl.log.Warn("failed_to_load_ratelimit_config_using_default",
			zap.Error(err),
			zap.String("default_rate", rl.defaultRate),
		)
	case cfg != nil && cfg.Rate != "":
		rateStr = cfg.Rate
	default:
		// Seed the row so operators see the effective rate in the CLI.
		if err := rl.repo.Set(ctx, &models.RatelimitConfig{Rate: rl.defaultRate}); err != nil {
			rl.log.Error("failed_to_save_default_ratelimit_config", zap.Error(err))
		}
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		rl.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate", rateStr),
		)
		rate, err = limiter.NewRateFromFormatted(rl.defaultRate)
		if err != nil {
			rl.log.Error("failed_to_parse_default_rate_limit", zap.Error(err))
			return
		}
	}

	lim := limiter.New(rl.store, rate)
	rl.mu.Lock()
	rl.current = lim
	rl.mu.Unlock()

	rl.log.Debug("rate_limit_loaded", zap.String("rate", rateStr))
}
