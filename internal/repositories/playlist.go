package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const playlistColumns = "id, sequence, user_id, name, description, created_at, updated_at, deleted_at"

// PlaylistRepository implements models.Repository[*models.Playlist].
//
// Handles playlist CRUD operations with soft delete support and owner-scoped lookups.
// HTTP handlers must use the Owned variants so every query is filtered by the caller's user id.
type PlaylistRepository struct {
	db *shared.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *shared.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	sequence, err := NextSequence(ctx, r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)
	playlist.SetSequence(sequence)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO playlists (id, sequence, user_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		playlist.UserID(),
		playlist.Name(),
		playlist.Description(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetOwned retrieves a playlist by ID only if it belongs to userID.
//
// Playlists owned by someone else are reported exactly like missing ones.
func (r *PlaylistRepository) GetOwned(ctx context.Context, userID, id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND user_id = ? AND deleted_at IS NULL`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID), id)
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		playlist.Name(),
		playlist.Description(),
		now,
		playlist.ID(),
		playlist.UserID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return expectAffected(result, shared.ErrPlaylistNotFound, playlist.ID())
}

// Delete soft-deletes a playlist by ID together with its songs
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id, "")
}

// DeleteOwned soft-deletes a playlist and its songs only if the playlist belongs to userID
func (r *PlaylistRepository) DeleteOwned(ctx context.Context, userID, id string) error {
	if userID == "" {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return r.delete(ctx, id, userID)
}

func (r *PlaylistRepository) delete(ctx context.Context, id, userID string) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	args := []any{now, id}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	result, err := tx.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	if err := expectAffected(result, shared.ErrPlaylistNotFound, id); err != nil {
		return err
	}

	songs := `UPDATE songs SET deleted_at = ? WHERE playlist_id = ? AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, r.db.Rebind(songs), now, id); err != nil {
		return fmt.Errorf("failed to delete playlist songs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist delete: %w", err)
	}

	return nil
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists.
//
// Supported criteria: "user_id".
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// ListOwned retrieves the playlists belonging to userID.
func (r *PlaylistRepository) ListOwned(ctx context.Context, userID string) ([]*models.Playlist, error) {
	if userID == "" {
		return []*models.Playlist{}, nil
	}
	return r.List(ctx, map[string]any{"user_id": userID})
}

// scanOne scans a single row into a [models.Playlist]
func (r *PlaylistRepository) scanOne(row *sql.Row, id string) (*models.Playlist, error) {
	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return playlist, nil
}

func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		id          string
		sequence    int
		userID      string
		name        string
		description string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &userID, &name, &description, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	playlist := models.NewPlaylist(sequence, userID, name, description)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}
