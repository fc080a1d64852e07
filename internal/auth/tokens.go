package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 2 * time.Hour

// TokenKind classifies why a token failed verification.
type TokenKind string

const (
	Malformed        TokenKind = "Malformed"
	InvalidSignature TokenKind = "InvalidSignature"
	Expired          TokenKind = "Expired"
)

// Sentinels matched by [*TokenError] through errors.Is.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
)

// TokenError is returned by [Tokens.Verify].
type TokenError struct {
	Kind TokenKind
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Message is the human-readable cause without the kind prefix.
func (e *TokenError) Message() string {
	return e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *TokenError) Is(target error) bool {
	switch e.Kind {
	case Malformed:
		return target == ErrMalformed
	case InvalidSignature:
		return target == ErrInvalidSignature
	case Expired:
		return target == ErrExpired
	}
	return false
}

// Claims is the identity carried by a token.
type Claims struct {
	UserID string
}

type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed, time-limited identity tokens.
//
// The secret is fixed at construction and a Tokens value is safe for concurrent use.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures [NewTokens].
type TokenOption func(*Tokens)

// WithTTL overrides [DefaultTokenTTL]. Non-positive values are ignored.
func WithTTL(ttl time.Duration) TokenOption {
	return func(t *Tokens) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(t *Tokens) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokens creates a token service signing with secret. An empty secret returns [ErrMissingSecret].
func NewTokens(secret []byte, opts ...TokenOption) (*Tokens, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	t := &Tokens{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// TTL returns how long issued tokens stay valid.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs claims into a token that expires TTL from now.
func (t *Tokens) Issue(claims Claims) (string, error) {
	if claims.UserID == "" {
		return "", fmt.Errorf("cannot issue a token without a user id")
	}

	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: claims.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns its claims.
//
// Failures are [*TokenError] values. Signatures are checked before expiry, so a forged
// expired token reports InvalidSignature.
func (t *Tokens) Verify(token string) (Claims, error) {
	var claims tokenClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, classify(err)
	}

	if claims.UserID == "" {
		return Claims{}, &TokenError{Kind: Malformed, Err: errors.New("token has no userId claim")}
	}

	return Claims{UserID: claims.UserID}, nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: Expired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Kind: InvalidSignature, Err: err}
	default:
		return &TokenError{Kind: Malformed, Err: err}
	}
}
