package probe

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthChecker asks the backend's standard gRPC health service whether
// it is SERVING. It complements the HTTP probe when the backend exposes one.
type GRPCHealthChecker struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	service string
	timeout time.Duration
}

// NewGRPCHealthChecker dials addr lazily; no connection is made until the
// first Check.
func NewGRPCHealthChecker(addr, service string, timeout time.Duration) (*GRPCHealthChecker, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc health dial %s: %w", addr, err)
	}
	return newGRPCHealthChecker(conn, healthpb.NewHealthClient(conn), service, timeout), nil
}

func newGRPCHealthChecker(conn *grpc.ClientConn, client healthpb.HealthClient, service string, timeout time.Duration) *GRPCHealthChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &GRPCHealthChecker{conn: conn, client: client, service: service, timeout: timeout}
}

// Check returns true only for SERVING.
func (g *GRPCHealthChecker) Check(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Check(ctx, &healthpb.HealthCheckRequest{Service: g.service})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (g *GRPCHealthChecker) Close() error {
	if g.conn == nil {
		return nil
	}
	return g.conn.Close()
}
