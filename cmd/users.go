package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// UsersList prints every active account. Password hashes are never printed.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).List(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	if len(users) == 0 {
		return r.writePlain("No users\n")
	}

	return r.writePlain("%s\n%s\n", formatter.Title(fmt.Sprintf("Users (%d)", len(users))), formatter.UsersTable(users))
}

// UsersDelete soft-deletes an account. Tokens already issued to it resolve to UserNotFound afterwards.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := repositories.NewUserRepository(db).Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("user deleted", "user_id", id)
	return r.writePlain("✓ Deleted user %s\n", id)
}
