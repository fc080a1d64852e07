package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints the playlists owned by the account with --email.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	user, err := repositories.NewUserRepository(db).GetByEmail(ctx, shared.NormalizeEmail(cmd.String("email")))
	if err != nil {
		return err
	}

	playlists, err := repositories.NewPlaylistRepository(db).ListOwned(ctx, user.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	songs := repositories.NewSongRepository(db)
	counts := make(map[string]int, len(playlists))
	for _, p := range playlists {
		list, err := songs.ListByPlaylist(ctx, p.ID())
		if err != nil {
			return err
		}
		counts[p.ID()] = len(list)
	}

	title := formatter.Title(fmt.Sprintf("Playlists for %s (%d)", user.Email(), len(playlists)))
	return r.writePlain("%s\n%s\n", title, formatter.PlaylistsTable(playlists, counts))
}

// PlaylistsShow prints a playlist and its songs.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	export, err := r.loadExport(ctx, cmd)
	if err != nil {
		return err
	}

	if err := r.writePlain("%s\n", formatter.Title(export.Playlist.Name())); err != nil {
		return err
	}
	if export.Playlist.Description() != "" {
		if err := r.writePlain("%s\n\n", export.Playlist.Description()); err != nil {
			return err
		}
	}
	return r.writePlain("%s\n", formatter.SongsTable(export.Songs))
}

// PlaylistsExport writes a playlist to a CSV, Markdown or text file.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	export, err := r.loadExport(ctx, cmd)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("playlist exported", "playlist_id", export.Playlist.ID(), "format", format, "path", path)
	return r.writePlain("✓ Exported %d songs to %s\n", len(export.Songs), path)
}

func (r *Runner) loadExport(ctx context.Context, cmd *cli.Command) (*formatter.PlaylistExport, error) {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	playlist, err := repositories.NewPlaylistRepository(db).Get(ctx, cmd.String("id"))
	if err != nil {
		return nil, err
	}

	songs, err := repositories.NewSongRepository(db).ListByPlaylist(ctx, playlist.ID())
	if err != nil {
		return nil, err
	}

	return &formatter.PlaylistExport{Playlist: playlist, Songs: songs}, nil
}
