package httpapi

import (
	"context"
	"net"

	"github.com/dmitrijs2005/posync/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer answers grpc.health.v1 for the whole backend ("" service).
type HealthServer struct {
	address string
	logger  logging.Logger
	health  *health.Server
}

func NewHealthServer(address string, l logging.Logger) *HealthServer {
	h := &HealthServer{
		address: address,
		logger:  l.With("module", "grpc_health"),
		health:  health.NewServer(),
	}
	h.SetServing(false)
	return h
}

// SetServing flips the reported status. The server starts NOT_SERVING until
// the application marks it ready.
func (h *HealthServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", st)
}

func (h *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", h.address)
	if err != nil {
		return err
	}
	return h.Serve(ctx, listen)
}

func (h *HealthServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, h.health)

	go func() {
		<-ctx.Done()
		h.logger.Info(ctx, "Stopping gRPC health server...")
		h.health.Shutdown()
		srv.GracefulStop()
	}()

	h.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())
	return srv.Serve(listen)
}
