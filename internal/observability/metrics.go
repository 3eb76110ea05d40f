package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// unmatchedRoute is the label value used for requests that do not
// match any route, keeping cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	activeRequests   prometheus.Gauge
	routeMatches     *prometheus.CounterVec
	forwardsTotal    *prometheus.CounterVec
	cacheResults     *prometheus.CounterVec
	circuitBreaker   *prometheus.GaugeVec
	rateLimitHits    prometheus.Counter
	routeTableSize   prometheus.Gauge
	routeTableBuilds *prometheus.CounterVec
	buildInfo        *prometheus.GaugeVec
	registry         *prometheus.Registry
}

// NewMetrics creates a new Metrics instance on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pathsupport"
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "route", "status"},
	)

	m.activeRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_requests",
		Help:      "Number of in-flight HTTP requests",
	})

	m.routeMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_matches_total",
			Help:      "Route matches by route name and request type",
		},
		[]string{"route", "request_type"},
	)

	m.forwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forwards_total",
			Help:      "Canonical path requests forwarded to JSON:API resources",
		},
		[]string{"resource_type", "status"},
	)

	m.cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_results_total",
			Help:      "Page cache lookups by result (hit, miss, bypass)",
		},
		[]string{"result"},
	)

	m.circuitBreaker = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	m.rateLimitHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_hits_total",
		Help:      "Total number of rejected requests due to rate limiting",
	})

	m.routeTableSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "route_table_routes",
		Help:      "Number of routes in the active route table",
	})

	m.routeTableBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_table_builds_total",
			Help:      "Route table builds by result",
		},
		[]string{"result"},
	)

	m.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "commit", "build_time"},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.activeRequests,
		m.routeMatches,
		m.forwardsTotal,
		m.cacheResults,
		m.circuitBreaker,
		m.rateLimitHits,
		m.routeTableSize,
		m.routeTableBuilds,
		m.buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, route, statusStr).Inc()
	m.requestDuration.WithLabelValues(method, route, statusStr).Observe(duration.Seconds())
}

// RecordRouteMatch records a route match for a main or sub request.
func (m *Metrics) RecordRouteMatch(route, requestType string) {
	m.routeMatches.WithLabelValues(route, requestType).Inc()
}

// RecordForward records a forwarded request and the sub-request status.
func (m *Metrics) RecordForward(resourceType string, status int) {
	m.forwardsTotal.WithLabelValues(resourceType, strconv.Itoa(status)).Inc()
}

// RecordCacheResult records a page cache lookup result.
func (m *Metrics) RecordCacheResult(result string) {
	m.cacheResults.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState sets the circuit breaker state.
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.circuitBreaker.WithLabelValues(name).Set(float64(state))
}

// RecordRateLimitHit records a rate limited request.
func (m *Metrics) RecordRateLimitHit() {
	m.rateLimitHits.Inc()
}

// RecordRouteTableBuild records a route table build and, on success,
// the resulting table size.
func (m *Metrics) RecordRouteTableBuild(routes int, err error) {
	if err != nil {
		m.routeTableBuilds.WithLabelValues("error").Inc()
		return
	}
	m.routeTableBuilds.WithLabelValues("success").Inc()
	m.routeTableSize.Set(float64(routes))
}

// SetBuildInfo sets the build information metric.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsMiddleware returns a middleware that records request metrics.
// The route label is read back from a util.RouteHolder the kernel fills
// in after matching, so raw paths never become label values.
func MetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			holder := util.RouteHolderFromContext(r.Context())
			if holder == nil {
				holder = &util.RouteHolder{}
				r = r.WithContext(util.ContextWithRouteHolder(r.Context(), holder))
			}

			rw := util.NewResponseRecorder(w)

			metrics.activeRequests.Inc()
			next.ServeHTTP(rw, r)
			metrics.activeRequests.Dec()

			route := holder.Name
			if route == "" {
				route = unmatchedRoute
			}
			metrics.RecordRequest(r.Method, route, rw.Status, time.Since(start))
		})
	}
}
