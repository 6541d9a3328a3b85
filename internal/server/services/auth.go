// Package services contains server-side business logic: AuthService turns
// credentials into tokens and tokens back into identities, UserService is the
// registration and lookup path over the user directory.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/auth"
	"github.com/dmitrijs2005/dinoauth/internal/server/config"
	"github.com/dmitrijs2005/dinoauth/internal/server/metrics"
	"github.com/dmitrijs2005/dinoauth/internal/server/models"
	"github.com/google/uuid"
)

// UserDirectory is the read-only view of the user store that authentication
// needs. Absence is reported as common.ErrorNotFound; any other error is an
// infrastructure failure.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService issues and verifies bearer tokens. It keeps no session state:
// every Verify re-reads the user, so a deleted user is locked out on the next
// request.
//
// Errors: common.ErrorUnauthorized for every denied outcome, an error
// wrapping common.ErrorInternal for infrastructure failures.
type AuthService struct {
	directory     UserDirectory
	hasher        *auth.PasswordHasher
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
	now           func() time.Time
}

// NewAuthService constructs an AuthService. The secret is copied out of cfg
// once and never changes afterwards.
func NewAuthService(dir UserDirectory, hasher *auth.PasswordHasher, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		directory:     dir,
		hasher:        hasher,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		logger:        logger.With("module", "auth_service"),
		now:           time.Now,
	}
}

// Login checks email and password and returns a signed token valid for the
// configured window. Unknown email and wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return "", s.internal(ctx, metrics.OperationLogin, "user lookup failed", err)
		}
		if err := s.hasher.VerifyAbsent(ctx, password); err != nil {
			return "", s.internal(ctx, metrics.OperationLogin, "password check aborted", err)
		}
		return "", s.denied(ctx, metrics.OperationLogin, "unknown email")
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", s.internal(ctx, metrics.OperationLogin, "password check aborted", err)
	}
	if !ok {
		return "", s.denied(ctx, metrics.OperationLogin, "password mismatch", "user_id", user.ID)
	}

	token, err := auth.EncodeToken(auth.Claims{
		Subject:   user.ID.String(),
		ExpiresAt: s.now().Add(s.tokenValidity),
	}, s.jwtSecret)
	if err != nil {
		return "", s.internal(ctx, metrics.OperationLogin, "token signing failed", err)
	}

	metrics.RecordAuthAttempt(metrics.OperationLogin, metrics.OutcomeSuccess)
	s.logger.Info(ctx, "login succeeded", "user_id", user.ID)
	return token, nil
}

// Verify decodes token and resolves its subject to a current user.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.DecodeToken(token, s.jwtSecret)
	if err != nil {
		return nil, s.denied(ctx, metrics.OperationVerify, "token rejected", "cause", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		// A correctly signed token with a foreign subject was not minted by Login.
		s.logger.Warn(ctx, "token subject is not a user id")
		return nil, s.denied(ctx, metrics.OperationVerify, "bad subject")
	}

	user, err := s.directory.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, s.denied(ctx, metrics.OperationVerify, "user no longer exists", "user_id", id)
		}
		return nil, s.internal(ctx, metrics.OperationVerify, "user lookup failed", err)
	}

	metrics.RecordAuthAttempt(metrics.OperationVerify, metrics.OutcomeSuccess)
	return user, nil
}

func (s *AuthService) denied(ctx context.Context, op, reason string, args ...any) error {
	metrics.RecordAuthAttempt(op, metrics.OutcomeDenied)
	s.logger.Debug(ctx, op+" denied", append([]any{"reason", reason}, args...)...)
	return common.ErrorUnauthorized
}

func (s *AuthService) internal(ctx context.Context, op, msg string, err error) error {
	metrics.RecordAuthAttempt(op, metrics.OutcomeInternal)
	s.logger.Error(ctx, msg, "operation", op, "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, msg, err)
}
