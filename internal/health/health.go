// Package health exposes the standard gRPC health service next to each HTTP
// server and checks it from dependants.
package health

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Server struct {
	grpc   *grpc.Server
	health *grpchealth.Server
}

func NewServer() *Server {
	s := grpc.NewServer()
	h := grpchealth.NewServer()
	healthpb.RegisterHealthServer(s, h)
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{grpc: s, health: h}
}

// SetServing flips the overall and per-service status.
func (s *Server) SetServing(service string, ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	if service != "" {
		s.health.SetServingStatus(service, st)
	}
}

// Serve blocks until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()
	log.Printf("[health] grpc health listening on %s", addr)
	return s.grpc.Serve(l)
}

// Check asks addr whether service is SERVING.
func Check(ctx context.Context, addr, service string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer conn.Close()
	out, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return err
	}
	if out.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%s at %s is %s", service, addr, out.GetStatus())
	}
	return nil
}

// WaitFor retries Check until it succeeds or ctx expires.
func WaitFor(ctx context.Context, addr, service string, every time.Duration) error {
	for {
		pctx, cancel := context.WithTimeout(ctx, every)
		err := Check(pctx, addr, service)
		cancel()
		if err == nil {
			return nil
		}
		log.Printf("[health] waiting for %s at %s: %v", service, addr, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready: %w", service, err)
		case <-time.After(every):
		}
	}
}
