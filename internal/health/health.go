// Package health serves the standard gRPC health checking protocol
// (grpc.health.v1) so orchestrators can probe the dashboard.
//
// The overall status ("") and the Service status track the dataset: NOT_SERVING
// until it loads, SERVING afterwards, and NOT_SERVING again during shutdown.
package health

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported alongside the overall status.
const Service = "launchdash.Dashboard"

// Server is a gRPC server exposing only the health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// New returns a Server that starts out NOT_SERVING. Interceptors apply to
// every unary call, including Check.
func New(interceptors ...grpc.UnaryServerInterceptor) *Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	s := &Server{grpc: gs, health: hs}
	s.SetServing(false)
	return s
}

// SetServing flips both the overall and the Service status.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(Service, st)
	slog.Info("health: status changed", "status", st.String())
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING, then drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
