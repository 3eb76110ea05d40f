package middleware

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// RateLimiter is a global token bucket limiter.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  observability.Logger
	metrics *observability.Metrics
}

// RateLimiterOption is a functional option for configuring the rate limiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterLogger sets the logger for the rate limiter.
func WithRateLimiterLogger(logger observability.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// WithRateLimiterMetrics records rejected requests.
func WithRateLimiterMetrics(metrics *observability.Metrics) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.metrics = metrics
	}
}

// NewRateLimiter creates a rate limiter allowing rps requests per second
// with the given burst.
func NewRateLimiter(rps, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Allow reports whether a request may proceed now.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// retryAfter returns the whole seconds until the next token, at least one.
func (rl *RateLimiter) retryAfter() string {
	r := rl.limiter.ReserveN(time.Now(), 1)
	if !r.OK() {
		return "1"
	}
	delay := r.Delay()
	r.Cancel()
	return strconv.Itoa(max(1, int(math.Ceil(delay.Seconds()))))
}

// RateLimit returns a middleware that answers 429 once the limiter is
// exhausted.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow() {
				rl.logger.WithContext(r.Context()).Warn("rate limit exceeded",
					observability.String("remote_addr", r.RemoteAddr),
					observability.String("path", r.URL.Path),
				)
				if rl.metrics != nil {
					rl.metrics.RecordRateLimitHit()
				}

				w.Header().Set(HeaderContentType, ContentTypeJSON)
				w.Header().Set(HeaderRetryAfter, rl.retryAfter())
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitFromConfig creates rate limit middleware from configuration.
// A disabled limiter is a pass-through.
func RateLimitFromConfig(
	cfg *config.RateLimitConfig,
	logger observability.Logger,
	metrics *observability.Metrics,
) func(http.Handler) http.Handler {
	if cfg == nil || !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	rl := NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst,
		WithRateLimiterLogger(logger),
		WithRateLimiterMetrics(metrics),
	)
	return RateLimit(rl)
}
