// Package bridge implements bulkhead.Listener on top of slog and
// OpenTelemetry: admission, rejection, and release outcomes for a single
// Bulkhead, logged with a bulkhead name for multi-instance deployments
// and recorded as span events on the calling context's active span when
// present.
package bridge

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/janbalangue/async-bulkhead/bulkhead"
)

// Listener logs and traces bulkhead lifecycle events for a named
// bulkhead instance. It never blocks and never returns an error to the
// bulkhead; bulkhead.dispatch already guards callers against panics.
type Listener struct {
	name   string
	logger *slog.Logger
}

// New returns a bridge.Listener that logs under the given bulkhead name.
func New(name string, logger *slog.Logger) *Listener {
	return &Listener{name: name, logger: logger}
}

var _ bulkhead.Listener = (*Listener)(nil)

// OnAdmitted logs at debug level; admission is the common case and
// would otherwise dominate the logs at info level under load.
func (l *Listener) OnAdmitted() {
	l.logger.Debug("bulkhead admitted", slog.String("bulkhead", l.name))
}

// OnRejected logs at warn level: saturation is actionable for an
// operator sizing the limit.
func (l *Listener) OnRejected() {
	l.logger.Warn("bulkhead rejected submission", slog.String("bulkhead", l.name))
}

// OnReleased logs at the level matching the release kind: debug for a
// clean success, warn for a failure or cancellation.
func (l *Listener) OnReleased(kind bulkhead.ReleaseKind, err error) {
	switch kind {
	case bulkhead.ReleaseSuccess:
		l.logger.Debug("bulkhead released", slog.String("bulkhead", l.name), slog.String("outcome", kind.String()))
	case bulkhead.ReleaseFailure:
		l.logger.Warn("bulkhead released", slog.String("bulkhead", l.name), slog.String("outcome", kind.String()), slog.Any("error", err))
	case bulkhead.ReleaseCancelled:
		l.logger.Warn("bulkhead released", slog.String("bulkhead", l.name), slog.String("outcome", kind.String()))
	}
}

// TracingListener wraps a Listener and additionally records each event
// as a span event on the span active in ctx, if any. Submit call sites
// pass the ctx they started a span with; the bulkhead package itself
// carries no context, so this wiring lives entirely in the demo layer.
type TracingListener struct {
	*Listener
	ctx context.Context
}

// WithContext returns a Listener that also annotates the span active in
// ctx, falling back to plain logging if ctx carries no recording span.
func (l *Listener) WithContext(ctx context.Context) *TracingListener {
	return &TracingListener{Listener: l, ctx: ctx}
}

func (t *TracingListener) OnAdmitted() {
	t.Listener.OnAdmitted()
	t.addEvent("bulkhead.admitted")
}

func (t *TracingListener) OnRejected() {
	t.Listener.OnRejected()
	t.addEvent("bulkhead.rejected")
}

func (t *TracingListener) OnReleased(kind bulkhead.ReleaseKind, err error) {
	t.Listener.OnReleased(kind, err)
	span := trace.SpanFromContext(t.ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("bulkhead.outcome", kind.String())}
	if err != nil {
		span.RecordError(err)
	}
	span.AddEvent("bulkhead.released", trace.WithAttributes(attrs...))
}

func (t *TracingListener) addEvent(name string) {
	span := trace.SpanFromContext(t.ctx)
	if span.IsRecording() {
		span.AddEvent(name)
	}
}
