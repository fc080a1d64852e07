package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file from the template when missing, then runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if r.config == nil {
		if _, err := os.Stat(configPath); err != nil {
			r.logger.Info("config file not found, creating from template", "path", configPath)
			if err := shared.CreateConfigFile(configPath); err != nil {
				r.logger.Warn("failed to create config file, using defaults", "error", err)
			} else {
				r.logger.Info("config file created", "path", configPath)
			}
		}
	}

	config, err := r.loadConfig(configPath)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "driver", config.Database.Driver, "path", config.Database.Path)

	db, err := r.openDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.MigrationVersion(ctx, db)
	if err != nil {
		return err
	}

	migrations, err := shared.ListMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	for _, m := range migrations {
		if err := r.writePlain("  %d %s\n", m.Version, filepath.Base(m.Path)); err != nil {
			return err
		}
	}

	r.logger.Info("setup complete", "version", version, "migrations", len(migrations))
	return r.writePlain("✓ Database ready at migration %d\n", version)
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	version, err := shared.MigrationVersion(ctx, db)
	if err != nil {
		return err
	}

	r.logger.Info("rollback complete", "version", version)
	return r.writePlain("✓ Rolled back to migration %d\n", version)
}
