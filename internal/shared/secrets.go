package shared

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Secrets holds the process-wide credentials that must come from the environment.
//
// Both values are loaded once at startup and never change for the lifetime of the process.
type Secrets struct {
	DatabasePassword string `env:"SETLIST_DATABASE_PASSWORD,required,notEmpty"`
	TokenSecret      string `env:"SETLIST_TOKEN_SECRET,required,notEmpty"`
}

// LoadDotEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return nil
}

// LoadSecrets parses [Secrets] from the process environment.
func LoadSecrets() (*Secrets, error) {
	return parseSecrets(env.Options{})
}

// LoadSecretsFrom parses [Secrets] from the given key/value map instead of the process environment.
func LoadSecretsFrom(environ map[string]string) (*Secrets, error) {
	return parseSecrets(env.Options{Environment: environ})
}

func parseSecrets(opts env.Options) (*Secrets, error) {
	var secrets Secrets
	if err := env.ParseWithOptions(&secrets, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingSecrets, err)
	}
	return &secrets, nil
}
