package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// DefaultReadinessProbeTimeout bounds one readiness probe.
const DefaultReadinessProbeTimeout = 5 * time.Second

// Check result statuses.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusDraining = "draining"
)

// Handler handles health check requests.
type Handler struct {
	logger    observability.Logger
	startTime time.Time
	timeout   time.Duration
	version   string
	draining  atomic.Bool

	mu     sync.RWMutex
	checks []HealthCheck
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string                  `json:"status"`
	Version   string                  `json:"version,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
	Uptime    string                  `json:"uptime,omitempty"`
	Checks    map[string]*CheckResult `json:"checks,omitempty"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithTimeout sets the readiness probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) Option {
	return func(h *Handler) {
		h.version = version
	}
}

// NewHandler creates a new health handler.
func NewHandler(logger observability.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	h := &Handler{
		logger:    logger,
		startTime: time.Now(),
		timeout:   DefaultReadinessProbeTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddCheck adds a health check.
func (h *Handler) AddCheck(check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check)
}

// SetDraining marks the server as shutting down; readiness fails from
// then on so load balancers stop sending traffic.
func (h *Handler) SetDraining(draining bool) {
	h.draining.Store(draining)
}

// LivenessHandler returns a handler for liveness probes.
func (h *Handler) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    StatusOK,
			"timestamp": time.Now().UTC(),
		})
	}
}

// ReadinessHandler returns a handler for readiness probes.
func (h *Handler) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := h.Readiness(c.Request.Context())
		c.JSON(statusCode(status), status)
	}
}

// HealthHandler returns a handler for detailed health checks.
func (h *Handler) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := h.Readiness(c.Request.Context())
		status.Version = h.version
		status.Uptime = time.Since(h.startTime).Round(time.Second).String()
		c.JSON(statusCode(status), status)
	}
}

func statusCode(status *HealthStatus) int {
	if status.Status != StatusOK {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Readiness runs all checks concurrently.
func (h *Handler) Readiness(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	status := &HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]*CheckResult, len(checks)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, check := range checks {
		wg.Add(1)
		go func(c HealthCheck) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)
			duration := time.Since(start)

			result := &CheckResult{Status: StatusOK, Duration: duration.String()}
			if err != nil {
				result.Status = StatusError
				result.Error = err.Error()

				h.logger.Warn("health check failed",
					observability.String("check", c.Name()),
					observability.Error(err),
					observability.Duration("duration", duration),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			status.Checks[c.Name()] = result
			if err != nil {
				status.Status = StatusError
			}
		}(check)
	}
	wg.Wait()

	if h.draining.Load() {
		status.Status = StatusDraining
	}
	return status
}

// RegisterRoutes registers health check routes on a Gin engine.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.HealthHandler())
	engine.GET("/healthz", h.LivenessHandler())
	engine.GET("/livez", h.LivenessHandler())
	engine.GET("/readyz", h.ReadinessHandler())
}
