// Package observability provides logging, metrics, and tracing
// functionality for the path support server.
//
// # Logging
//
// The Logger interface provides structured logging over zap:
//
//	logger, err := observability.NewLogger(observability.DefaultLogConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("route table rebuilt",
//	    observability.Int("routes", 12),
//	)
//
// # Metrics
//
// Prometheus metrics for requests, route matches, forwards, and the
// page cache live on a dedicated registry:
//
//	metrics := observability.NewMetrics("pathsupport")
//	handler := metrics.Handler()
//
// # Tracing
//
// OpenTelemetry distributed tracing with OTLP gRPC export. Sub-requests
// dispatched by the kernel open child spans of the main request span.
package observability
