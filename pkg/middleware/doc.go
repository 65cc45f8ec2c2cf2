// Package middleware provides the HTTP middleware taskly runs behind.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware, plus form submission and live
//     connection counters
//   - Path canonicalization
//
// # OpenTelemetry Middleware
//
// Tracing starts a server span per request, named after the chi route
// pattern, and continues any trace carried by the request headers.
//
//	r.Use(middleware.Tracing(
//	    middleware.WithTracerName("taskly"),
//	    middleware.WithSkipPaths("/healthz", "/metrics"),
//	))
//
// The tracer comes from the global OpenTelemetry tracer provider. Configure
// it in main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
// # Prometheus Metrics
//
// NewMetrics registers:
//   - taskly_http_requests_total: requests by route, method and status
//   - taskly_http_request_duration_seconds: request duration histogram
//   - taskly_form_submissions_total: submissions by form and outcome
//   - taskly_live_connections: open live connections
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
