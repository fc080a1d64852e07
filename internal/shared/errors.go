package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig  = fmt.Errorf("invalid configuration")
	ErrMissingSecrets = fmt.Errorf("missing secrets")

	// Persistence errors
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrSongNotFound     = fmt.Errorf("song not found")
	ErrDuplicateEmail   = fmt.Errorf("email is already registered")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
