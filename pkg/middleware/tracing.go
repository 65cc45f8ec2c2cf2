package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "taskly"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "taskly").
	TracerName string

	// Propagator extracts the incoming trace context.
	// Default: the global text map propagator.
	Propagator propagation.TextMapPropagator

	// SkipPaths are request paths that are never traced.
	SkipPaths []string

	tracer trace.Tracer
	skip   map[string]bool
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithPropagator sets the propagator used to continue incoming traces.
func WithPropagator(p propagation.TextMapPropagator) OTelOption {
	return func(c *OTelConfig) {
		c.Propagator = p
	}
}

// WithSkipPaths excludes paths from tracing.
func WithSkipPaths(paths ...string) OTelOption {
	return func(c *OTelConfig) {
		c.SkipPaths = append(c.SkipPaths, paths...)
	}
}

// Tracing creates middleware that wraps every request in a server span.
//
// The span carries the method, route pattern and response status. 5xx
// responses mark the span as failed. The span's context replaces the
// request context, so downstream calls (such as the auth backend client)
// become child spans.
func Tracing(opts ...OTelOption) func(http.Handler) http.Handler {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Propagator == nil {
		config.Propagator = otel.GetTextMapPropagator()
	}
	config.tracer = otel.Tracer(config.TracerName)
	config.skip = make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		config.skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := config.Propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := config.tracer.Start(ctx, fmt.Sprintf("HTTP %s", r.Method),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			span.SetName(fmt.Sprintf("HTTP %s %s", r.Method, route))
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}
