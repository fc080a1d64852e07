package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// User is an account that owns playlists.
//
// The password hash is only reachable through [User.PasswordHash]; it has no JSON form.
type User struct {
	record
	email        string
	passwordHash string
}

// NewUser creates a user with the given sequence, email and bcrypt password hash.
func NewUser(sequence int, email, passwordHash string) *User {
	return &User{record: newRecord(sequence), email: email, passwordHash: passwordHash}
}

func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }

// Validate checks that the user has an id, a plausible email and a password hash.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user id is required")
	}
	if u.email == "" {
		return fmt.Errorf("user email is required")
	}
	if !strings.Contains(u.email, "@") {
		return fmt.Errorf("user email %q is invalid", u.email)
	}
	if u.passwordHash == "" {
		return fmt.Errorf("user password hash is required")
	}
	return nil
}

type userJSON struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON encodes the public view of a user.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{ID: u.id, Email: u.email, CreatedAt: u.createdAt})
}
