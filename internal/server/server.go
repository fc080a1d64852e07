// package server contains middleware & handlers for the setlist HTTP API
package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route is a single method and path served by a [Handler].
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Handler groups the routes of one resource.
type Handler interface {
	Routes() []Route
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	With(middleware ...Middleware) Router             // With returns a router sharing routes with extra middleware
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a Handler
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// IdentityResolver maps an Authorization header value to a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (*models.User, error)
}

// AccountService registers users and issues tokens.
type AccountService interface {
	Register(ctx context.Context, email, password, confirmation string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// PlaylistStore is the owner-scoped playlist persistence used by handlers.
type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetOwned(ctx context.Context, userID, id string) (*models.Playlist, error)
	ListOwned(ctx context.Context, userID string) ([]*models.Playlist, error)
	DeleteOwned(ctx context.Context, userID, id string) error
}

// SongStore persists songs. Callers check playlist ownership first.
type SongStore interface {
	Create(ctx context.Context, song *models.Song) error
	ListByPlaylist(ctx context.Context, playlistID string) ([]*models.Song, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options are the dependencies of the API router.
type Options struct {
	Accounts  AccountService
	Resolver  IdentityResolver
	Playlists PlaylistStore
	Songs     SongStore
	DB        Pinger
	Logger    *log.Logger
}

// New builds the API router. Account and health routes are public; everything else
// runs behind [Authenticate].
func New(opts Options) *BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "server")

	validate := validator.New(validator.WithRequiredStructEnabled())

	router := NewBasicRouter()
	router.Use(middleware.RequestID, RequestLogger(logger), middleware.Recoverer)

	router.Handler(NewHealthHandler(opts.DB, logger))
	router.Handler(NewAccountsHandler(opts.Accounts, validate, logger))

	protected := router.With(Authenticate(opts.Resolver, logger))
	protected.Handler(NewPlaylistsHandler(opts.Playlists, opts.Songs, validate, logger))

	return router
}

var _ IdentityResolver = (*auth.Resolver)(nil)
var _ AccountService = (*auth.Accounts)(nil)
