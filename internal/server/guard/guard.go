// Package guard is the per-request authentication gate shared by the HTTP and
// gRPC surfaces. It turns the raw value of an Authorization header (or the
// equivalent gRPC metadata entry) into an authenticated user, or refuses.
//
// Every refusal is reported as common.ErrorUnauthorized. Whether the
// authenticator denied the token or failed internally is visible only in the
// authenticator's own logs and metrics.
package guard

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/metrics"
	"github.com/dmitrijs2005/dinoauth/internal/server/models"
)

// Authenticator resolves a bearer token to the user it was issued to.
// *services.AuthService satisfies it.
type Authenticator interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// Guard checks bearer credentials against an Authenticator.
type Guard struct {
	auth   Authenticator
	logger logging.Logger
}

func New(auth Authenticator, logger logging.Logger) *Guard {
	return &Guard{auth: auth, logger: logger.With("module", "guard")}
}

// Authenticate validates the credential header value received over
// transport ("http" or "grpc"). A missing header or a scheme other than
// "Bearer " is refused before the authenticator is consulted.
func (g *Guard) Authenticate(ctx context.Context, transport, header string) (*models.User, error) {
	token, reason := bearerToken(header)
	if reason != "" {
		metrics.RecordGuardRejection(transport, reason)
		g.logger.Debug(ctx, "request rejected", "transport", transport, "reason", reason)
		return nil, common.ErrorUnauthorized
	}

	user, err := g.auth.Verify(ctx, token)
	if err != nil {
		metrics.RecordGuardRejection(transport, metrics.ReasonDenied)
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// bearerToken returns the token carried by header, or the rejection reason.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", metrics.ReasonMissing
	}
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || token == "" {
		return "", metrics.ReasonScheme
	}
	return token, ""
}
