package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	secrets    func() (*shared.Secrets, error)
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Config, when set, is used instead of reading the --config file. Secrets defaults to
// [shared.LoadSecrets].
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Secrets    func() (*shared.Secrets, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Secrets == nil {
		opts.Secrets = shared.LoadSecrets
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		secrets:    opts.Secrets,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, usersCommand, playlistsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the injected config, or reads path (falling back to defaults when it does not exist).
//
// The configured log level is applied to the runner's logger.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	config := r.config
	if config == nil {
		if path == "" {
			path = r.configPath
		}

		loaded, err := shared.LoadConfigOrDefault(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := shared.SetLogLevelString(r.logger, config.Log.Level); err != nil {
		r.logger.Warn("ignoring log level", "error", err)
	}

	return config, nil
}

// openDatabase opens and tunes the configured database. Secrets are only read for Postgres.
func (r *Runner) openDatabase(config *shared.Config) (*shared.DB, error) {
	password := ""
	if config.Database.Driver == shared.DriverPostgres {
		secrets, err := r.secrets()
		if err != nil {
			return nil, err
		}
		password = secrets.DatabasePassword
	}

	db, err := shared.OpenDatabase(config.Database, password)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
