package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// cbTracer is the OTEL tracer used for circuit breaker operations.
var cbTracer = otel.Tracer("pathsupport/circuitbreaker")

// errServerStatus marks a 5xx sub-request response as a breaker failure.
var errServerStatus = errors.New("sub-request returned server error")

// CircuitBreakerStateFunc is called when the circuit breaker changes state.
// Parameters: name (circuit breaker name), state (0=closed, 1=half-open, 2=open).
type CircuitBreakerStateFunc func(name string, state int)

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	cb            *gobreaker.CircuitBreaker
	logger        observability.Logger
	stateCallback CircuitBreakerStateFunc
}

// CircuitBreakerOption is a functional option for configuring the circuit breaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithCircuitBreakerLogger sets the logger for the circuit breaker.
func WithCircuitBreakerLogger(logger observability.Logger) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.logger = logger
	}
}

// WithCircuitBreakerStateCallback sets a callback for circuit breaker state changes.
func WithCircuitBreakerStateCallback(fn CircuitBreakerStateFunc) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.stateCallback = fn
	}
}

// NewCircuitBreaker creates a circuit breaker that opens after threshold
// consecutive failures and probes again with up to halfOpenMax requests
// once timeout has passed.
func NewCircuitBreaker(
	name string,
	threshold int,
	timeout time.Duration,
	halfOpenMax int,
	opts ...CircuitBreakerOption,
) *CircuitBreaker {
	cb := &CircuitBreaker{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(cb)
	}

	thresholdU32 := max(1, safeIntToUint32(threshold))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: safeIntToUint32(halfOpenMax),
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= thresholdU32
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			cb.logger.Info("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)

			_, span := cbTracer.Start(context.Background(),
				"circuitbreaker.state_change",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			span.AddEvent("state_change", trace.WithAttributes(
				attribute.String("circuitbreaker.name", name),
				attribute.String("circuitbreaker.from", from.String()),
				attribute.String("circuitbreaker.to", to.String()),
			))
			span.End()

			if cb.stateCallback != nil {
				cb.stateCallback(name, int(to))
			}
		},
	}

	cb.cb = gobreaker.NewCircuitBreaker(settings)
	return cb
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

// Execute executes a function with circuit breaker protection.
func (cb *CircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	return cb.cb.Execute(fn)
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.cb.State()
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.cb.Name()
}

// BreakerDispatcher guards a kernel.Dispatcher with a circuit breaker.
// Sub-request responses with a 5xx status count as failures; while the
// breaker is open, requests fail fast with 503.
type BreakerDispatcher struct {
	next kernel.Dispatcher
	cb   *CircuitBreaker
}

// NewBreakerDispatcher wraps next.
func NewBreakerDispatcher(next kernel.Dispatcher, cb *CircuitBreaker) *BreakerDispatcher {
	return &BreakerDispatcher{next: next, cb: cb}
}

// Handle dispatches req through the circuit breaker.
func (d *BreakerDispatcher) Handle(
	ctx context.Context,
	req *kernel.Request,
	typ kernel.RequestType,
) (*kernel.Response, error) {
	var resp *kernel.Response

	_, err := d.cb.Execute(func() (any, error) {
		r, err := d.next.Handle(ctx, req, typ)
		if err != nil {
			return nil, err
		}
		resp = r
		if r.Status >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %d", errServerStatus, r.Status)
		}
		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		d.cb.logger.WithContext(ctx).Warn("circuit breaker rejected request",
			observability.String("path", req.URL.Path),
			observability.String("state", d.cb.State().String()),
		)
		return nil, &kernel.HTTPError{
			Status:  http.StatusServiceUnavailable,
			Message: "service unavailable",
			Cause:   err,
		}
	}
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

// DispatcherFromConfig wraps dispatcher in a circuit breaker when the
// configuration enables one.
func DispatcherFromConfig(
	cfg *config.CircuitBreakerConfig,
	dispatcher kernel.Dispatcher,
	opts ...CircuitBreakerOption,
) kernel.Dispatcher {
	if cfg == nil || !cfg.Enabled {
		return dispatcher
	}

	cb := NewCircuitBreaker("subrequest",
		cfg.Threshold,
		cfg.Timeout.Duration(),
		cfg.HalfOpenMax,
		opts...,
	)
	return NewBreakerDispatcher(dispatcher, cb)
}
