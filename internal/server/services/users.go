package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/auth"
	"github.com/dmitrijs2005/dinoauth/internal/server/models"
	"github.com/dmitrijs2005/dinoauth/internal/server/repositories/users"
	"github.com/google/uuid"
)

// UserService registers, lists and removes users. Passwords are hashed here
// and nowhere else, so the directory only ever sees hashes.
type UserService struct {
	repo   users.Repository
	hasher *auth.PasswordHasher
	logger logging.Logger
}

func NewUserService(repo users.Repository, hasher *auth.PasswordHasher, logger logging.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		logger: logger.With("module", "user_service"),
	}
}

// Register hashes password and stores a new user. Empty emails and
// passwords are refused; email uniqueness is not checked.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	if password == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, common.ErrEmptyPassword)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}
