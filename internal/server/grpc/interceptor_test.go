package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/guard"
	"github.com/dmitrijs2005/dinoauth/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const protectedMethod = "/grpc.reflection.v1.ServerReflection/ServerReflectionInfo"

// tokenAuth accepts a single token.
type tokenAuth struct {
	token string
	user  *models.User
	calls int
}

func (a *tokenAuth) Verify(_ context.Context, token string) (*models.User, error) {
	a.calls++
	if token != a.token {
		return nil, common.ErrorUnauthorized
	}
	return a.user, nil
}

// helper to build server
func newTestServer() (*GRPCServer, *tokenAuth) {
	a := &tokenAuth{token: "valid", user: &models.User{ID: uuid.New(), Email: "ann@example.com"}}
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), guard.New(a, logging.Nop())), a
}

func withAuth(value string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AuthorizationMetadataKey, value))
}

func TestInterceptor_PublicMethodAllowsWithoutToken(t *testing.T) {
	s, a := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: healthpb.Health_Check_FullMethodName}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled || resp != "ok" {
		t.Fatalf("handler not reached, resp=%v", resp)
	}
	if a.calls != 0 {
		t.Fatalf("authenticator called %d times for a public method", a.calls)
	}
}

func TestInterceptor_Unary(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		wantCode  codes.Code
		wantCalls int
	}{
		{"missing metadata", context.Background(), codes.Unauthenticated, 0},
		{"wrong scheme", withAuth("Token valid"), codes.Unauthenticated, 0},
		{"rejected token", withAuth("Bearer forged"), codes.Unauthenticated, 1},
		{"valid token", withAuth("Bearer valid"), codes.OK, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, a := newTestServer()
			info := &grpc.UnaryServerInfo{FullMethod: "/dinoauth.Private/Call"}

			var seen *models.User
			h := func(ctx context.Context, req any) (any, error) {
				seen, _ = guard.UserFromContext(ctx)
				return nil, nil
			}

			_, err := s.accessTokenInterceptor(tt.ctx, nil, info, h)
			if got := status.Code(err); got != tt.wantCode {
				t.Fatalf("code = %v, want %v (err=%v)", got, tt.wantCode, err)
			}
			if a.calls != tt.wantCalls {
				t.Fatalf("authenticator calls = %d, want %d", a.calls, tt.wantCalls)
			}
			if tt.wantCode == codes.OK && (seen == nil || seen.ID != a.user.ID) {
				t.Fatalf("handler did not receive the authenticated user: %v", seen)
			}
		})
	}
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func TestInterceptor_Stream(t *testing.T) {
	s, a := newTestServer()
	info := &grpc.StreamServerInfo{FullMethod: protectedMethod, IsServerStream: true, IsClientStream: true}

	err := s.streamAccessTokenInterceptor(nil, &fakeStream{ctx: context.Background()}, info,
		func(srv any, ss grpc.ServerStream) error {
			t.Fatal("handler should not be called without a token")
			return nil
		})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	var seen *models.User
	err = s.streamAccessTokenInterceptor(nil, &fakeStream{ctx: withAuth("Bearer valid")}, info,
		func(srv any, ss grpc.ServerStream) error {
			seen, _ = guard.UserFromContext(ss.Context())
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil || seen.ID != a.user.ID {
		t.Fatalf("stream context lacks the user: %v", seen)
	}
}
