// Package grpc exposes dinoauth over gRPC: the standard health service,
// open to anyone, and server reflection, which requires a bearer token in
// the "authorization" metadata entry.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/guard"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type GRPCServer struct {
	address string
	guard   *guard.Guard
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, g *guard.Guard) *GRPCServer {
	return &GRPCServer{
		address: a,
		guard:   g,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
}

// newServer creates the gRPC server with interceptors and services attached.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.address, err)
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}
