package auth

import "errors"

var (
	// ErrUnauthorized means the request carried no usable bearer credential.
	ErrUnauthorized = errors.New("Unauthorized")
	// ErrUserNotFound means a valid token referenced an account that no longer exists.
	ErrUserNotFound = errors.New("User does not exist")
	// ErrStoreFailure wraps persistence errors hit while resolving an identity.
	ErrStoreFailure = errors.New("user lookup failed")
	// ErrInvalidCredentials means an email/password pair did not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordMismatch means password and password_confirmation differ.
	ErrPasswordMismatch = errors.New("Password confirmation does not match")
	// ErrPasswordTooLong means bcrypt refused the password (over 72 bytes).
	ErrPasswordTooLong = errors.New("password is longer than 72 bytes")
	// ErrMissingSecret means the token signing secret was empty.
	ErrMissingSecret = errors.New("token signing secret is empty")
)
