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

const songColumns = "id, sequence, playlist_id, title, artist, album, duration, created_at, updated_at, deleted_at"

// SongRepository implements models.Repository[*models.Song].
//
// It does not check ownership; callers resolve the playlist through [PlaylistRepository.GetOwned] first.
type SongRepository struct {
	db *shared.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *shared.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song into the database with generated ID and sequence
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	sequence, err := NextSequence(ctx, r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	song.SetID(id)
	song.SetSequence(sequence)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO songs (id, sequence, playlist_id, title, artist, album, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		song.PlaylistID(),
		song.Title(),
		song.Artist(),
		song.Album(),
		song.Duration(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`

	song, err := scanSong(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	return song, nil
}

// Update modifies an existing song in the database
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET title = ?, artist = ?, album = ?, duration = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		song.Title(),
		song.Artist(),
		song.Album(),
		song.Duration(),
		now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	return expectAffected(result, shared.ErrSongNotFound, song.ID())
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return expectAffected(result, shared.ErrSongNotFound, id)
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs.
//
// Supported criteria: "playlist_id".
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`

	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// ListByPlaylist retrieves the songs attached to a playlist in insertion order.
func (r *SongRepository) ListByPlaylist(ctx context.Context, playlistID string) ([]*models.Song, error) {
	if playlistID == "" {
		return []*models.Song{}, nil
	}
	return r.List(ctx, map[string]any{"playlist_id": playlistID})
}

func scanSong(row scanner) (*models.Song, error) {
	var (
		id         string
		sequence   int
		playlistID string
		title      string
		artist     string
		album      string
		duration   int
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &playlistID, &title, &artist, &album, &duration, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	song := models.NewSong(sequence, playlistID, title, artist, album, duration)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}
