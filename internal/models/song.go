package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Song is a track attached to a playlist.
type Song struct {
	record
	playlistID string
	title      string
	artist     string
	album      string
	duration   int
}

// NewSong creates a song attached to playlistID. Duration is in seconds.
func NewSong(sequence int, playlistID, title, artist, album string, duration int) *Song {
	return &Song{
		record:     newRecord(sequence),
		playlistID: playlistID,
		title:      title,
		artist:     artist,
		album:      album,
		duration:   duration,
	}
}

func (s *Song) PlaylistID() string { return s.playlistID }
func (s *Song) Title() string      { return s.title }
func (s *Song) Artist() string     { return s.artist }
func (s *Song) Album() string      { return s.album }
func (s *Song) Duration() int      { return s.duration }

// Validate checks that the song has an id, a playlist, a title and an artist.
func (s *Song) Validate() error {
	if s.id == "" {
		return fmt.Errorf("song id is required")
	}
	if s.playlistID == "" {
		return fmt.Errorf("song playlist is required")
	}
	if s.title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.artist == "" {
		return fmt.Errorf("song artist is required")
	}
	if s.duration < 0 {
		return fmt.Errorf("song duration cannot be negative")
	}
	return nil
}

type songJSON struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album,omitempty"`
	Duration   int       `json:"duration,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// MarshalJSON encodes the public view of a song.
func (s *Song) MarshalJSON() ([]byte, error) {
	return json.Marshal(songJSON{
		ID:         s.id,
		PlaylistID: s.playlistID,
		Title:      s.title,
		Artist:     s.artist,
		Album:      s.album,
		Duration:   s.duration,
		CreatedAt:  s.createdAt,
	})
}
