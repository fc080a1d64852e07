package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// UserFinder loads a user by id. Missing or deleted users must yield an error wrapping [shared.ErrUserNotFound].
type UserFinder interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Resolver turns an Authorization header into the user it identifies.
type Resolver struct {
	tokens *Tokens
	users  UserFinder
}

// NewResolver creates a [Resolver] verifying with tokens and loading users from users.
func NewResolver(tokens *Tokens, users UserFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// BearerToken extracts the token from a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// Resolve verifies the bearer token in header and loads its user.
//
// Errors are [ErrUnauthorized], a [*TokenError], [ErrUserNotFound], or an error wrapping [ErrStoreFailure].
func (r *Resolver) Resolve(ctx context.Context, header string) (*models.User, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, ErrUnauthorized
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.Get(ctx, claims.UserID)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}
