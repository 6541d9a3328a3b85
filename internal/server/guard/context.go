package guard

import (
	"context"

	"github.com/dmitrijs2005/dinoauth/internal/server/models"
)

type ctxKey string

const userContextKey ctxKey = "dinoauth.guard.user"

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok && u != nil
}
