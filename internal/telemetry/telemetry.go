// Package telemetry wires OpenTelemetry tracing for the bulkhead demo
// service.
package telemetry

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// NewTracerProvider builds an in-process trace.TracerProvider. The demo
// ships with no OTLP exporter configured (wiring one is a single
// sdktrace.WithBatcher(exporter) option away); as shipped it registers no
// span processor, so spans are never exported and the demo has no network
// dependency, while still exercising the real span/attribute API the
// bulkhead's Listener bridge (see internal/bridge) builds on.
func NewTracerProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider()
}

// Tracer returns the named tracer the demo service's gRPC interceptors
// use to wrap each RPC in a span.
func Tracer(tp *sdktrace.TracerProvider) oteltrace.Tracer {
	return tp.Tracer("github.com/janbalangue/async-bulkhead/cmd/bulkheadsvc")
}

// Shutdown flushes and stops the tracer provider.
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	return tp.Shutdown(ctx)
}
