// Package grpcapi (continued) builds the demo's gRPC server and its
// middleware chain: recovery, logging, and tracing interceptors plus
// health check and reflection registration — the surface this demo
// exposes to operators.
package grpcapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/janbalangue/async-bulkhead/bulkhead"
	"github.com/janbalangue/async-bulkhead/internal/config"
	"github.com/janbalangue/async-bulkhead/internal/shutdown"
)

// Server wraps a *grpc.Server exposing the health check service, whose
// status follows the shutdown manager's draining state.
type Server struct {
	server   *grpc.Server
	listener net.Listener
	cfg      *config.ServerConfig
	logger   *slog.Logger
}

// NewServer builds the gRPC server, registering the health service and
// reflection.
func NewServer(cfg *config.Config, logger *slog.Logger, tracer trace.Tracer, b *bulkhead.Bulkhead, sm *shutdown.Manager) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpcapi: listen on %s: %w", addr, err)
	}

	recoveryOpts := []grpc_recovery.Option{
		grpc_recovery.WithRecoveryHandler(func(p any) (err error) {
			logger.Error("grpc panic recovered", slog.Any("panic", p))
			return status.Errorf(codes.Internal, "internal server error")
		}),
	}
	loggingOpts := []grpc_logging.Option{
		grpc_logging.WithLogOnEvents(grpc_logging.StartCall, grpc_logging.FinishCall),
	}

	unaryInterceptors := []grpc.UnaryServerInterceptor{
		grpc_recovery.UnaryServerInterceptor(recoveryOpts...),
		grpc_logging.UnaryServerInterceptor(interceptorLogger(logger), loggingOpts...),
		tracingUnaryInterceptor(tracer),
	}
	streamInterceptors := []grpc.StreamServerInterceptor{
		grpc_recovery.StreamServerInterceptor(recoveryOpts...),
		grpc_logging.StreamServerInterceptor(interceptorLogger(logger), loggingOpts...),
		tracingStreamInterceptor(tracer),
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	)

	grpc_health_v1.RegisterHealthServer(server, NewHealthServer(b, sm))
	reflection.Register(server)

	return &Server{server: server, listener: listener, cfg: &cfg.Server, logger: logger}, nil
}

// Start serves until the listener is closed.
func (s *Server) Start() error {
	s.logger.Info("starting grpc server", slog.String("address", s.listener.Addr().String()))
	return s.server.Serve(s.listener)
}

// Stop gracefully stops the server, falling back to a hard stop if ctx
// expires first.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping grpc server")
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.logger.Warn("grpc graceful stop timed out, forcing stop")
		s.server.Stop()
		return ctx.Err()
	}
}

// RegisterWithFx wires Server's start/stop into the fx lifecycle.
func RegisterWithFx(lc fx.Lifecycle, server *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := server.Start(); err != nil {
					server.logger.Error("grpc server exited", slog.String("error", err.Error()))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
}

func interceptorLogger(l *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, lvl grpc_logging.Level, msg string, fields ...any) {
		switch lvl {
		case grpc_logging.LevelDebug:
			l.DebugContext(ctx, msg, fields...)
		case grpc_logging.LevelInfo:
			l.InfoContext(ctx, msg, fields...)
		case grpc_logging.LevelWarn:
			l.WarnContext(ctx, msg, fields...)
		case grpc_logging.LevelError:
			l.ErrorContext(ctx, msg, fields...)
		default:
			l.InfoContext(ctx, msg, fields...)
		}
	})
}

func tracingUnaryInterceptor(tracer trace.Tracer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, span := tracer.Start(ctx, info.FullMethod)
		defer span.End()
		resp, err := handler(ctx, req)
		if err != nil {
			span.RecordError(err)
		}
		return resp, err
	}
}

func tracingStreamInterceptor(tracer trace.Tracer) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, span := tracer.Start(ss.Context(), info.FullMethod)
		defer span.End()
		wrapped := &tracedServerStream{ServerStream: ss, ctx: ctx}
		err := handler(srv, wrapped)
		if err != nil {
			span.RecordError(err)
		}
		return err
	}
}

type tracedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedServerStream) Context() context.Context {
	return s.ctx
}
