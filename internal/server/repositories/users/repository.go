// Package users holds the user directory: the stored identities that login
// and token verification resolve against.
package users

import (
	"context"

	"github.com/dmitrijs2005/dinoauth/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the full directory contract. Lookups return
// common.ErrorNotFound when no record matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
