package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// MaxPasswordLength is the number of bytes bcrypt reads from a password.
const MaxPasswordLength = 72

// Credentials hashes and verifies passwords with bcrypt at a fixed cost.
type Credentials struct {
	cost int
}

// NewCredentials returns a [Credentials] using cost, or [DefaultCost] when cost is zero.
func NewCredentials(cost int) (*Credentials, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Credentials{cost: cost}, nil
}

// Cost returns the configured bcrypt work factor.
func (c *Credentials) Cost() int {
	return c.cost
}

// Hash returns a salted bcrypt hash of plaintext.
func (c *Credentials) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
//
// Passwords longer than [MaxPasswordLength] never match since bcrypt would ignore the tail.
func (c *Credentials) Verify(plaintext, hash string) bool {
	if len(plaintext) > MaxPasswordLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
