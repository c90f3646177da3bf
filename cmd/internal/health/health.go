// Package health answers grpc.health.v1 checks for orchestrators. The overall status
// follows a database ping made on every Check.
package health

import (
	"context"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const checkTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	healthpb.UnimplementedHealthServer
	db Pinger
}

func NewServer(db Pinger) *Server {
	return &Server{db: db}
}

// Check reports SERVING while the database answers. Only the overall service ("") is known.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if req.GetService() != "" {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		log.Printf("health check failed: %v", err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// StartGRPC listens on addr and returns a shutdown function.
func StartGRPC(addr string, db Pinger) (func(context.Context) error, error) {
	if addr == "" {
		addr = ":50051"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log.Printf("gRPC health listening on %s", lis.Addr())
	return Serve(lis, db), nil
}

// Serve runs the health service on lis until the returned function is called.
func Serve(lis net.Listener, db Pinger) func(context.Context) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, NewServer(db))

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}
}
