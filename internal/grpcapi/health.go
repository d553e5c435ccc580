// Package grpcapi exposes the demo service's health over gRPC. The
// reported status does not depend on the bulkhead's InFlight/Limit: a
// bulkhead at capacity is still "serving" (it will reject admission,
// which is its documented behavior, not a failure) — only a shutdown in
// progress marks NOT_SERVING.
package grpcapi

import (
	"context"
	"time"

	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/janbalangue/async-bulkhead/bulkhead"
	"github.com/janbalangue/async-bulkhead/internal/shutdown"
)

// HealthServer implements grpc_health_v1.HealthServer over a Bulkhead
// and its associated shutdown.Manager.
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	b  *bulkhead.Bulkhead
	sm *shutdown.Manager
}

// NewHealthServer builds a HealthServer reporting on b, honoring sm's
// draining state.
func NewHealthServer(b *bulkhead.Bulkhead, sm *shutdown.Manager) *HealthServer {
	return &HealthServer{b: b, sm: sm}
}

// Check implements the unary gRPC health check RPC.
func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if h.sm != nil && h.sm.IsShuttingDown() {
		return &grpc_health_v1.HealthCheckResponse{
			Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		}, nil
	}
	return &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_SERVING,
	}, nil
}

// Watch implements the streaming gRPC health check RPC: it sends the
// current status once, then re-checks and sends it again every 5
// seconds, so a status change reaches the client at the next tick.
func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	resp, err := h.Check(stream.Context(), req)
	if err != nil {
		return err
	}
	if err := stream.Send(resp); err != nil {
		return err
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	last := resp.Status
	for {
		select {
		case <-stream.Context().Done():
			return nil
		case <-ticker.C:
			resp, err := h.Check(stream.Context(), req)
			if err != nil {
				return err
			}
			if resp.Status != last {
				last = resp.Status
			}
			if err := stream.Send(resp); err != nil {
				return err
			}
		}
	}
}
