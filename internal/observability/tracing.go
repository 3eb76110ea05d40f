package observability

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// OTLP exporter defaults.
const (
	DefaultOTLPTimeout            = 10 * time.Second
	DefaultOTLPReconnectionPeriod = 10 * time.Second
	DefaultOTLPRetryInitial       = 1 * time.Second
	DefaultOTLPRetryMaxInterval   = 30 * time.Second
	DefaultOTLPRetryMaxElapsed    = 1 * time.Minute
)

// TracerConfig contains tracing configuration.
type TracerConfig struct {
	ServiceName  string
	OTLPEndpoint string
	SamplingRate float64
	Enabled      bool

	// Exporter overrides the OTLP exporter. Used by tests with an
	// in-memory exporter.
	Exporter sdktrace.SpanExporter
}

// Tracer wraps OpenTelemetry tracing functionality.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracer creates a new tracer. A disabled tracer still hands out
// spans from the global (no-op by default) provider.
func NewTracer(cfg TracerConfig) (*Tracer, error) {
	if !cfg.Enabled {
		return &Tracer{tracer: otel.Tracer(cfg.ServiceName)}, nil
	}

	exporter := cfg.Exporter
	if exporter == nil && cfg.OTLPEndpoint != "" {
		otlp, err := newOTLPExporter(cfg.OTLPEndpoint)
		if err != nil {
			return nil, err
		}
		exporter = otlp
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(createSampler(cfg.SamplingRate))),
	}
	if exporter != nil {
		if cfg.Exporter != nil {
			opts = append(opts, sdktrace.WithSyncer(exporter))
		} else {
			opts = append(opts, sdktrace.WithBatcher(exporter))
		}
	}

	provider := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer(cfg.ServiceName),
	}, nil
}

func newOTLPExporter(endpoint string) (*otlptrace.Exporter, error) {
	return otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(DefaultOTLPTimeout),
		otlptracegrpc.WithReconnectionPeriod(DefaultOTLPReconnectionPeriod),
		otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{
			Enabled:         true,
			InitialInterval: DefaultOTLPRetryInitial,
			MaxInterval:     DefaultOTLPRetryMaxInterval,
			MaxElapsedTime:  DefaultOTLPRetryMaxElapsed,
		}),
	)
}

func createSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes and stops the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// StartSpan starts a new span.
func (t *Tracer) StartSpan(
	ctx context.Context,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// TracingMiddleware returns a middleware that opens a server span per
// request. The span is renamed to the matched route once known.
func TracingMiddleware(tracer *Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.StartSpan(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
					attribute.String("url.query", r.URL.RawQuery),
					attribute.String("server.address", r.Host),
				),
			)
			defer span.End()

			holder := util.RouteHolderFromContext(ctx)
			if holder == nil {
				holder = &util.RouteHolder{}
				ctx = util.ContextWithRouteHolder(ctx, holder)
			}

			if sc := span.SpanContext(); sc.IsValid() {
				ctx = ContextWithTraceID(ctx, sc.TraceID().String())
				ctx = ContextWithSpanID(ctx, sc.SpanID().String())
			}

			rw := util.NewResponseRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if holder.Name != "" {
				span.SetName(r.Method + " " + holder.Name)
				span.SetAttributes(attribute.String("http.route", holder.Name))
			}
			span.SetAttributes(attribute.Int("http.response.status_code", rw.Status))
			if rw.Status >= http.StatusInternalServerError {
				span.SetAttributes(attribute.Bool("error", true))
			}
		})
	}
}
