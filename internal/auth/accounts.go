package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// UserStore is the persistence [Accounts] needs.
type UserStore interface {
	UserFinder
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Accounts registers users and exchanges email/password pairs for tokens.
type Accounts struct {
	users       UserStore
	credentials *Credentials
	tokens      *Tokens
	logger      *log.Logger
}

// NewAccounts wires the account flows. A nil logger falls back to [shared.NewLogger].
func NewAccounts(users UserStore, credentials *Credentials, tokens *Tokens, logger *log.Logger) *Accounts {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Accounts{
		users:       users,
		credentials: credentials,
		tokens:      tokens,
		logger:      shared.WithLogger(logger, "component", "accounts"),
	}
}

// Register creates an account after checking that password and confirmation match.
//
// A mismatch returns [ErrPasswordMismatch] without touching the store.
func (a *Accounts) Register(ctx context.Context, email, password, confirmation string) (*models.User, error) {
	if password != confirmation {
		a.logger.Debug("password confirmation mismatch")
		return nil, ErrPasswordMismatch
	}

	hash, err := a.credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(0, shared.NormalizeEmail(email), hash)
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) || errors.Is(err, shared.ErrInvalidInput) {
			a.logger.Info("registration rejected", "error", err)
			return nil, err
		}
		a.logger.Error("failed to create user", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	a.logger.Info("user registered", "user_id", user.ID())
	return user, nil
}

// Login verifies the password for email and issues a token.
//
// Unknown emails and wrong passwords both return [ErrInvalidCredentials].
func (a *Accounts) Login(ctx context.Context, email, password string) (string, error) {
	user, err := a.users.GetByEmail(ctx, shared.NormalizeEmail(email))
	if errors.Is(err, shared.ErrUserNotFound) {
		a.logger.Info("login for unknown email")
		return "", ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("failed to load user", "error", err)
		return "", fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	if !a.credentials.Verify(password, user.PasswordHash()) {
		a.logger.Info("invalid credentials", "user_id", user.ID())
		return "", ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(Claims{UserID: user.ID()})
	if err != nil {
		a.logger.Error("failed to issue token", "error", err)
		return "", err
	}

	a.logger.Info("user logged in", "user_id", user.ID())
	return token, nil
}
