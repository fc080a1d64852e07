package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const playlistNotFound = "Error NotFound: playlist not found"

// PlaylistRequest is the body of POST /playlists.
type PlaylistRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// SongRequest is the body of POST /playlists/{id}/songs.
type SongRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Artist   string `json:"artist" validate:"required,max=200"`
	Album    string `json:"album" validate:"max=200"`
	Duration int    `json:"duration" validate:"gte=0"`
}

// PlaylistDetail is a playlist with its songs, returned by GET /playlists/{id}.
type PlaylistDetail struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Songs       []*models.Song `json:"songs"`
}

// PlaylistsHandler serves playlists and their songs for the authenticated user.
//
// Every store call is scoped to the user from the request context; a playlist owned by
// someone else answers exactly like a missing one.
type PlaylistsHandler struct {
	playlists PlaylistStore
	songs     SongStore
	validate  *validator.Validate
	logger    *log.Logger
}

func NewPlaylistsHandler(playlists PlaylistStore, songs SongStore, validate *validator.Validate, logger *log.Logger) *PlaylistsHandler {
	return &PlaylistsHandler{playlists: playlists, songs: songs, validate: validate, logger: logger}
}

func (h *PlaylistsHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/playlists", Handler: h.List},
		{Method: http.MethodPost, Path: "/playlists", Handler: h.Create},
		{Method: http.MethodGet, Path: "/playlists/{id}", Handler: h.Get},
		{Method: http.MethodDelete, Path: "/playlists/{id}", Handler: h.Delete},
		{Method: http.MethodGet, Path: "/playlists/{id}/songs", Handler: h.ListSongs},
		{Method: http.MethodPost, Path: "/playlists/{id}/songs", Handler: h.AddSong},
	}
}

// List returns the caller's playlists.
func (h *PlaylistsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	playlists, err := h.playlists.ListOwned(r.Context(), user.ID())
	if err != nil {
		h.fail(w, r, "failed to list playlists", err)
		return
	}

	respond(w, r, http.StatusOK, playlists)
}

// Create adds a playlist owned by the caller.
func (h *PlaylistsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var req PlaylistRequest
	if !h.decode(w, r, &req) {
		return
	}

	playlist := models.NewPlaylist(0, user.ID(), req.Name, req.Description)
	if err := h.playlists.Create(r.Context(), playlist); err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, "failed to create playlist", err)
		return
	}

	respond(w, r, http.StatusCreated, playlist)
}

// Get returns one of the caller's playlists with its songs.
func (h *PlaylistsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	playlist, ok := h.owned(w, r, user)
	if !ok {
		return
	}

	songs, err := h.songs.ListByPlaylist(r.Context(), playlist.ID())
	if err != nil {
		h.fail(w, r, "failed to list songs", err)
		return
	}

	respond(w, r, http.StatusOK, PlaylistDetail{
		ID:          playlist.ID(),
		UserID:      playlist.UserID(),
		Name:        playlist.Name(),
		Description: playlist.Description(),
		CreatedAt:   playlist.CreatedAt(),
		UpdatedAt:   playlist.UpdatedAt(),
		Songs:       songs,
	})
}

// Delete soft-deletes one of the caller's playlists and its songs.
func (h *PlaylistsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	err := h.playlists.DeleteOwned(r.Context(), user.ID(), r.PathValue("id"))
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		respondError(w, r, http.StatusNotFound, playlistNotFound)
	case err != nil:
		h.fail(w, r, "failed to delete playlist", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListSongs returns the songs of one of the caller's playlists.
func (h *PlaylistsHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	playlist, ok := h.owned(w, r, user)
	if !ok {
		return
	}

	songs, err := h.songs.ListByPlaylist(r.Context(), playlist.ID())
	if err != nil {
		h.fail(w, r, "failed to list songs", err)
		return
	}

	respond(w, r, http.StatusOK, songs)
}

// AddSong appends a song to one of the caller's playlists.
func (h *PlaylistsHandler) AddSong(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	playlist, ok := h.owned(w, r, user)
	if !ok {
		return
	}

	var req SongRequest
	if !h.decode(w, r, &req) {
		return
	}

	song := models.NewSong(0, playlist.ID(), req.Title, req.Artist, req.Album, req.Duration)
	if err := h.songs.Create(r.Context(), song); err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, "failed to create song", err)
		return
	}

	respond(w, r, http.StatusCreated, song)
}

// user reads the identity set by [Authenticate]. A route mounted without it answers 401.
func (h *PlaylistsHandler) user(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return nil, false
	}
	return user, true
}

func (h *PlaylistsHandler) owned(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Playlist, bool) {
	playlist, err := h.playlists.GetOwned(r.Context(), user.ID(), r.PathValue("id"))
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		respondError(w, r, http.StatusNotFound, playlistNotFound)
		return nil, false
	}
	if err != nil {
		h.fail(w, r, "failed to load playlist", err)
		return nil, false
	}
	return playlist, true
}

func (h *PlaylistsHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.logger.Warn("failed to decode request body", "error", err, "request_id", middleware.GetReqID(r.Context()))
		respondError(w, r, http.StatusBadRequest, "Failed to decode request")
		return false
	}

	if err := h.validate.Struct(v); err != nil {
		respondError(w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}

func (h *PlaylistsHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "error", err, "request_id", middleware.GetReqID(r.Context()))
	respondError(w, r, http.StatusInternalServerError, internalError)
}
