package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// clock is a settable time source for expiry tests
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTokens(t *testing.T, secret string, opts ...TokenOption) (*Tokens, *clock) {
	t.Helper()

	c := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := NewTokens([]byte(secret), append([]TokenOption{WithClock(c.Now)}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	return tokens, c
}

func TestTokens(t *testing.T) {
	t.Run("NewTokens", func(t *testing.T) {
		t.Run("empty secret is refused", func(t *testing.T) {
			for _, secret := range [][]byte{nil, {}} {
				if _, err := NewTokens(secret); !errors.Is(err, ErrMissingSecret) {
					t.Errorf("expected ErrMissingSecret, got %v", err)
				}
			}
		})

		t.Run("default ttl is two hours", func(t *testing.T) {
			tokens, err := NewTokens([]byte("secret"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tokens.TTL() != 2*time.Hour {
				t.Errorf("expected ttl 2h, got %s", tokens.TTL())
			}
		})

		t.Run("WithTTL ignores non-positive values", func(t *testing.T) {
			tokens, _ := NewTokens([]byte("secret"), WithTTL(0))
			if tokens.TTL() != DefaultTokenTTL {
				t.Errorf("expected default ttl, got %s", tokens.TTL())
			}
		})
	})

	t.Run("Issue & Verify round trip", func(t *testing.T) {
		tokens, _ := newTestTokens(t, "secret")

		for _, id := range []string{"user-1", "6f1c2a5e-8d7b-4e2f-9a3c-1b2d3e4f5a6b"} {
			token, err := tokens.Issue(Claims{UserID: id})
			if err != nil {
				t.Fatalf("failed to issue token: %v", err)
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				t.Fatalf("failed to verify token: %v", err)
			}

			if claims.UserID != id {
				t.Errorf("expected user id %s, got %s", id, claims.UserID)
			}
		}
	})

	t.Run("Issue requires user id", func(t *testing.T) {
		tokens, _ := newTestTokens(t, "secret")

		if _, err := tokens.Issue(Claims{}); err == nil {
			t.Error("expected error issuing token without user id")
		}
	})

	t.Run("Issue embeds expiry", func(t *testing.T) {
		tokens, c := newTestTokens(t, "secret")

		token, err := tokens.Issue(Claims{UserID: "user-1"})
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		var claims tokenClaims
		if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
			t.Fatalf("failed to decode token: %v", err)
		}

		if !claims.ExpiresAt.Time.Equal(c.Now().Add(2 * time.Hour)) {
			t.Errorf("expected expiry %s, got %s", c.Now().Add(2*time.Hour), claims.ExpiresAt.Time)
		}
	})

	t.Run("Verify before expiry", func(t *testing.T) {
		tokens, c := newTestTokens(t, "secret")

		token, _ := tokens.Issue(Claims{UserID: "user-1"})
		c.Advance(2*time.Hour - time.Minute)

		if _, err := tokens.Verify(token); err != nil {
			t.Errorf("expected token to be valid just before expiry, got %v", err)
		}
	})

	t.Run("Verify after expiry", func(t *testing.T) {
		tokens, c := newTestTokens(t, "secret")

		token, _ := tokens.Issue(Claims{UserID: "user-1"})
		c.Advance(2*time.Hour + time.Second)

		_, err := tokens.Verify(token)
		if !errors.Is(err, ErrExpired) {
			t.Fatalf("expected ErrExpired, got %v", err)
		}

		var tokenErr *TokenError
		if !errors.As(err, &tokenErr) || tokenErr.Kind != Expired {
			t.Errorf("expected TokenError of kind Expired, got %v", err)
		}
	})

	t.Run("Verify wrong secret", func(t *testing.T) {
		issuer, _ := newTestTokens(t, "secret-a")
		verifier, _ := newTestTokens(t, "secret-b")

		token, _ := issuer.Issue(Claims{UserID: "user-1"})

		if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("Verify tampered payload", func(t *testing.T) {
		tokens, _ := newTestTokens(t, "secret")

		token, _ := tokens.Issue(Claims{UserID: "user-1"})
		other, _ := tokens.Issue(Claims{UserID: "user-2"})

		parts := strings.Split(token, ".")
		otherParts := strings.Split(other, ".")
		forged := parts[0] + "." + otherParts[1] + "." + parts[2]

		if _, err := tokens.Verify(forged); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("Verify rejects other algorithms", func(t *testing.T) {
		tokens, c := newTestTokens(t, "secret")

		claims := tokenClaims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(c.Now().Add(time.Hour))},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		if _, err := tokens.Verify(token); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to build unsigned token: %v", err)
		}

		if _, err := tokens.Verify(unsigned); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature for alg none, got %v", err)
		}
	})

	t.Run("Verify malformed", func(t *testing.T) {
		tokens, c := newTestTokens(t, "secret")

		noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(c.Now().Add(time.Hour))},
		}).SignedString([]byte("secret"))

		noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{UserID: "user-1"}).SignedString([]byte("secret"))

		tt := []struct {
			name  string
			token string
		}{
			{name: "garbage", token: "garbage"},
			{name: "empty", token: ""},
			{name: "two segments", token: "abc.def"},
			{name: "bad base64", token: "!!!.###.$$$"},
			{name: "missing userId", token: noUser},
			{name: "missing expiry", token: noExpiry},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				_, err := tokens.Verify(tc.token)
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("expected ErrMalformed, got %v", err)
				}
			})
		}
	})

	t.Run("TokenError", func(t *testing.T) {
		err := &TokenError{Kind: Expired, Err: errors.New("token has expired")}

		if err.Error() != "Expired: token has expired" {
			t.Errorf("unexpected Error(): %s", err.Error())
		}
		if err.Message() != "token has expired" {
			t.Errorf("unexpected Message(): %s", err.Message())
		}
		if errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalidSignature) {
			t.Error("expired error should only match ErrExpired")
		}
	})
}
