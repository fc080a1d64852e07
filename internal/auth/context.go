package auth

import (
	"context"

	"github.com/desertthunder/setlist/internal/models"
)

type contextKey struct{}

// WithUser returns a copy of ctx carrying user as the resolved identity.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the identity stored by [WithUser].
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*models.User)
	return user, ok && user != nil
}
