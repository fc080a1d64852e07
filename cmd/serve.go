package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP API until ctx is cancelled.
//
// Both secrets must be present before the database is opened or a port is bound.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	secrets, err := r.secrets()
	if err != nil {
		return err
	}

	db, err := shared.OpenDatabase(config.Database, secrets.DatabasePassword)
	if err != nil {
		return err
	}
	defer db.Close()
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	handler, err := newHandler(config, secrets, db, r.logger)
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = config.Server.Addr()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  config.Server.ReadTimeout.Duration,
		WriteTimeout: config.Server.WriteTimeout.Duration,
		IdleTimeout:  config.Server.IdleTimeout.Duration,
		ErrorLog:     r.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	r.logger.Info("listening", "addr", ln.Addr().String(), "driver", db.Driver())

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	r.logger.Info("server stopped")
	return nil
}

// newHandler wires the auth core and repositories into the API router.
func newHandler(config *shared.Config, secrets *shared.Secrets, db *shared.DB, logger *log.Logger) (http.Handler, error) {
	credentials, err := auth.NewCredentials(config.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	tokens, err := auth.NewTokens([]byte(secrets.TokenSecret), auth.WithTTL(config.Auth.TokenTTL.Duration))
	if err != nil {
		return nil, err
	}

	users := repositories.NewUserRepository(db)

	return server.New(server.Options{
		Accounts:  auth.NewAccounts(users, credentials, tokens, logger),
		Resolver:  auth.NewResolver(tokens, users),
		Playlists: repositories.NewPlaylistRepository(db),
		Songs:     repositories.NewSongRepository(db),
		DB:        db,
		Logger:    logger,
	}), nil
}
