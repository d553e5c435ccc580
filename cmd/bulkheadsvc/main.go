// Package main is the entry point for the bulkhead demo service: an fx
// application wiring config, logging, tracing, a single Bulkhead
// instance, and a gRPC health endpoint together.
package main

import (
	"context"
	"log/slog"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/janbalangue/async-bulkhead/bulkhead"
	"github.com/janbalangue/async-bulkhead/internal/bridge"
	"github.com/janbalangue/async-bulkhead/internal/config"
	"github.com/janbalangue/async-bulkhead/internal/grpcapi"
	"github.com/janbalangue/async-bulkhead/internal/shutdown"
	"github.com/janbalangue/async-bulkhead/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			telemetry.NewTracerProvider,
			newTracer,
			newBulkheadListener,
			newBulkhead,
			shutdown.New,
			grpcapi.NewServer,
		),
		fx.Invoke(grpcapi.RegisterWithFx),
		fx.Invoke(registerTracerLifecycle),
		fx.Invoke(registerDrainOnStop),
	)

	app.Run()
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}

	var handler slog.Handler
	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func newTracer(tp *sdktrace.TracerProvider) oteltrace.Tracer {
	return telemetry.Tracer(tp)
}

func newBulkheadListener(logger *slog.Logger) *bridge.Listener {
	return bridge.New("default", logger)
}

func newBulkhead(cfg *config.Config, listener *bridge.Listener) *bulkhead.Bulkhead {
	return bulkhead.New(cfg.Bulkhead.Limit, listener)
}

// registerTracerLifecycle flushes and shuts down the tracer provider on
// fx stop.
func registerTracerLifecycle(lc fx.Lifecycle, tp *sdktrace.TracerProvider, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := telemetry.Shutdown(ctx, tp); err != nil {
				logger.Error("tracer provider shutdown failed", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	})
}

// registerDrainOnStop begins draining and waits (bounded by the
// configured shutdown timeout) for in-flight bulkhead admissions to
// settle before fx proceeds with the rest of its stop sequence.
func registerDrainOnStop(lc fx.Lifecycle, sm *shutdown.Manager, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sm.Begin()
			logger.Info("draining in-flight bulkhead admissions", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
			if err := sm.WaitWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
				logger.Warn("drain timed out, proceeding with shutdown", slog.String("error", err.Error()))
			}
			return nil
		},
	})
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
