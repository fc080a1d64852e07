package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Playlist is a named collection of songs owned by one user.
type Playlist struct {
	record
	userID      string
	name        string
	description string
}

// NewPlaylist creates a playlist owned by userID.
func NewPlaylist(sequence int, userID, name, description string) *Playlist {
	return &Playlist{record: newRecord(sequence), userID: userID, name: name, description: description}
}

func (p *Playlist) UserID() string      { return p.userID }
func (p *Playlist) Name() string        { return p.name }
func (p *Playlist) Description() string { return p.description }

func (p *Playlist) SetName(name string)               { p.name = name }
func (p *Playlist) SetDescription(description string) { p.description = description }

// OwnedBy reports whether the playlist belongs to the given user.
func (p *Playlist) OwnedBy(userID string) bool {
	return userID != "" && p.userID == userID
}

// Validate checks that the playlist has an id, an owner and a name.
func (p *Playlist) Validate() error {
	if p.id == "" {
		return fmt.Errorf("playlist id is required")
	}
	if p.userID == "" {
		return fmt.Errorf("playlist owner is required")
	}
	if p.name == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}

type playlistJSON struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarshalJSON encodes the public view of a playlist.
func (p *Playlist) MarshalJSON() ([]byte, error) {
	return json.Marshal(playlistJSON{
		ID:          p.id,
		UserID:      p.userID,
		Name:        p.name,
		Description: p.description,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	})
}
