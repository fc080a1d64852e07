package shared

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration describes one embedded schema migration.
type Migration struct {
	Version int64
	Path    string
}

func newMigrationProvider(db *DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	dialect := goose.DialectSQLite3
	if db.Driver() == DriverPostgres {
		dialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// ListMigrations lists the embedded migrations sorted by version.
func ListMigrations(db *DB) ([]Migration, error) {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, source := range provider.ListSources() {
		migrations = append(migrations, Migration{Version: source.Version, Path: source.Path})
	}
	return migrations, nil
}

// RunMigrations executes all pending migrations on the database.
// Applied versions are tracked by goose in the goose_db_version table.
func RunMigrations(ctx context.Context, db *DB) error {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// RollbackMigration rolls back the most recent migration.
func RollbackMigration(ctx context.Context, db *DB) error {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if version == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	if _, err := provider.Down(ctx); err != nil {
		return fmt.Errorf("failed to rollback migration %d: %w", version, err)
	}

	return nil
}

// MigrationVersion returns the highest applied migration version, or 0 when none are applied.
func MigrationVersion(ctx context.Context, db *DB) (int64, error) {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}
