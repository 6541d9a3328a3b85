package grpc

import (
	"context"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/server/guard"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const TransportGRPC = "grpc"

// publicMethods are served without a bearer token.
var publicMethods = map[string]struct{}{
	healthpb.Health_Check_FullMethodName: {},
	healthpb.Health_Watch_FullMethodName: {},
}

// authenticate applies the guard to the "authorization" metadata entry and
// returns a context carrying the caller.
func (s *GRPCServer) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	if _, ok := publicMethods[fullMethod]; ok {
		return ctx, nil
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			header = values[0]
		}
	}

	user, err := s.guard.Authenticate(ctx, TransportGRPC, header)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return guard.WithUser(ctx, user), nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (s *GRPCServer) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authenticatedStream{ServerStream: ss, ctx: ctx})
}

// authenticatedStream overrides the stream context with one carrying the user.
type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *authenticatedStream) Context() context.Context {
	return w.ctx
}
