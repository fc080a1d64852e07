package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "server-test-secret"

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type testServer struct {
	handler http.Handler
	db      *shared.DB
	users   *repositories.UserRepository
	clock   *testClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	clock := &testClock{now: time.Now()}
	tokens, err := auth.NewTokens([]byte(testSecret), auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	credentials, err := auth.NewCredentials(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to create credentials: %v", err)
	}

	users := repositories.NewUserRepository(db)
	logger := shared.NewLogger(io.Discard)

	handler := New(Options{
		Accounts:  auth.NewAccounts(users, credentials, tokens, logger),
		Resolver:  auth.NewResolver(tokens, users),
		Playlists: repositories.NewPlaylistRepository(db),
		Songs:     repositories.NewSongRepository(db),
		DB:        db,
		Logger:    logger,
	})

	return &testServer{handler: handler, db: db, users: users, clock: clock}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// signup registers email and logs in, returning the user id and a token.
func (s *testServer) signup(t *testing.T, email string) (string, string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/users", "", map[string]string{
		"email": email, "password": "hunter22", "password_confirmation": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to register %s: %d %s", email, rec.Code, rec.Body.String())
	}
	id := decodeObject(t, rec)["id"].(string)

	rec = s.do(t, http.MethodPost, "/tokens", "", map[string]string{"email": email, "password": "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("failed to log in %s: %d %s", email, rec.Code, rec.Body.String())
	}

	return id, decodeObject(t, rec)["token"].(string)
}

func (s *testServer) createPlaylist(t *testing.T, token, name string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/playlists", token, map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create playlist: %d %s", rec.Code, rec.Body.String())
	}
	return decodeObject(t, rec)["id"].(string)
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if got := decodeObject(t, rec)["error"]; got != message {
		t.Errorf("expected error %q, got %q", message, got)
	}
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodGet, "/health", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if decodeObject(t, rec)["status"] != "ok" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("database unavailable", func(t *testing.T) {
		s := newTestServer(t)
		s.db.Close()

		rec := s.do(t, http.MethodGet, "/health", "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

func TestRegister(t *testing.T) {
	t.Run("creates user without echoing password", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/users", "", map[string]string{
			"email": "alice@example.com", "password": "hunter22", "password_confirmation": "hunter22",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeObject(t, rec)
		if body["id"] == "" || body["email"] != "alice@example.com" {
			t.Errorf("unexpected body: %v", body)
		}
		if strings.Contains(rec.Body.String(), "hunter22") || strings.Contains(rec.Body.String(), "$2") {
			t.Errorf("response leaks password material: %s", rec.Body.String())
		}
		if _, ok := body["password_hash"]; ok {
			t.Error("response must not include password_hash")
		}
	})

	t.Run("confirmation mismatch answers 200 and creates nothing", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/users", "", map[string]string{
			"email": "bob@example.com", "password": "hunter22", "password_confirmation": "hunter23",
		})
		assertError(t, rec, http.StatusOK, "Password confirmation does not match")

		users, err := s.users.List(context.Background(), nil)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("expected no users, got %d", len(users))
		}
	})

	t.Run("confirmation mismatch is checked before validation", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/users", "", map[string]string{
			"email": "a@b.co", "password": "", "password_confirmation": "x",
		})
		assertError(t, rec, http.StatusOK, "Password confirmation does not match")
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newTestServer(t)
		s.signup(t, "carol@example.com")

		rec := s.do(t, http.MethodPost, "/users", "", map[string]string{
			"email": "carol@example.com", "password": "pw", "password_confirmation": "pw",
		})
		assertError(t, rec, http.StatusBadRequest, "email is already registered")
	})

	t.Run("invalid body", func(t *testing.T) {
		s := newTestServer(t)

		tt := []struct {
			name string
			body any
		}{
			{name: "missing email", body: map[string]string{"password": "pw", "password_confirmation": "pw"}},
			{name: "bad email", body: map[string]string{"email": "nope", "password": "pw", "password_confirmation": "pw"}},
			{name: "missing password", body: map[string]string{"email": "d@example.com"}},
			{name: "wrong type", body: map[string]int{"email": 1}},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				rec := s.do(t, http.MethodPost, "/users", "", tc.body)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
				}
			})
		}
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "erin@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/tokens", "", map[string]string{"email": "erin@example.com", "password": "hunter22"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if token, _ := decodeObject(t, rec)["token"].(string); token == "" {
			t.Error("expected a token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/tokens", "", map[string]string{"email": "erin@example.com", "password": "nope"})
		assertError(t, rec, http.StatusUnauthorized, "Unauthorized")
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/tokens", "", map[string]string{"email": "ghost@example.com", "password": "hunter22"})
		assertError(t, rec, http.StatusUnauthorized, "Unauthorized")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/tokens", "", map[string]string{})
		assertError(t, rec, http.StatusUnauthorized, "Unauthorized")
	})

	t.Run("password sharing the first 72 bytes", func(t *testing.T) {
		password := strings.Repeat("a", 72)
		rec := s.do(t, http.MethodPost, "/users", "", map[string]string{
			"email": "long@example.com", "password": password, "password_confirmation": password,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed to register: %d %s", rec.Code, rec.Body.String())
		}

		rec = s.do(t, http.MethodPost, "/tokens", "", map[string]string{"email": "long@example.com", "password": password})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for the exact password, got %d", rec.Code)
		}

		rec = s.do(t, http.MethodPost, "/tokens", "", map[string]string{
			"email": "long@example.com", "password": password + "-different-suffix",
		})
		assertError(t, rec, http.StatusUnauthorized, "Unauthorized")
	})
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup(t, "frank@example.com")

	t.Run("missing header", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/playlists", "", nil)
		assertError(t, rec, http.StatusUnauthorized, "Unauthorized")
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/playlists", nil)
		req.Header.Set("Authorization", "Basic "+token)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)

		assertError(t, rec, http.StatusUnauthorized, "Unauthorized")
	})

	t.Run("malformed token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/playlists", "garbage", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if msg, _ := decodeObject(t, rec)["error"].(string); !strings.HasPrefix(msg, "Error Malformed: ") {
			t.Errorf("unexpected error: %q", msg)
		}
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, _ := auth.NewTokens([]byte("not-the-server-secret"))
		forged, _ := other.Issue(auth.Claims{UserID: "whoever"})

		rec := s.do(t, http.MethodGet, "/playlists", forged, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if msg, _ := decodeObject(t, rec)["error"].(string); !strings.HasPrefix(msg, "Error InvalidSignature: ") {
			t.Errorf("unexpected error: %q", msg)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/playlists", token, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("expired token", func(t *testing.T) {
		s.clock.now = s.clock.now.Add(2*time.Hour + time.Second)
		defer func() { s.clock.now = s.clock.now.Add(-2*time.Hour - time.Second) }()

		rec := s.do(t, http.MethodGet, "/playlists", token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if msg, _ := decodeObject(t, rec)["error"].(string); !strings.HasPrefix(msg, "Error Expired: ") {
			t.Errorf("unexpected error: %q", msg)
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		id, token := s.signup(t, "gone@example.com")
		if err := s.users.Delete(context.Background(), id); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		rec := s.do(t, http.MethodGet, "/playlists", token, nil)
		assertError(t, rec, http.StatusBadRequest, "Error UserNotFound: User does not exist")
	})
}

func TestPlaylists(t *testing.T) {
	t.Run("create, read and delete", func(t *testing.T) {
		s := newTestServer(t)
		userID, token := s.signup(t, "gina@example.com")

		rec := s.do(t, http.MethodPost, "/playlists", token, map[string]string{"name": "Road trip", "description": "long drives"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		created := decodeObject(t, rec)
		if created["user_id"] != userID {
			t.Errorf("expected owner %s, got %v", userID, created["user_id"])
		}
		id := created["id"].(string)

		rec = s.do(t, http.MethodPost, "/playlists/"+id+"/songs", token, map[string]any{
			"title": "Roadrunner", "artist": "The Modern Lovers", "duration": 245,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = s.do(t, http.MethodGet, "/playlists/"+id, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		detail := decodeObject(t, rec)
		if detail["name"] != "Road trip" {
			t.Errorf("unexpected name: %v", detail["name"])
		}
		songs, _ := detail["songs"].([]any)
		if len(songs) != 1 {
			t.Fatalf("expected 1 song, got %d", len(songs))
		}

		rec = s.do(t, http.MethodGet, "/playlists/"+id+"/songs", token, nil)
		if list := decodeList(t, rec); len(list) != 1 || list[0]["title"] != "Roadrunner" {
			t.Errorf("unexpected songs: %v", list)
		}

		rec = s.do(t, http.MethodDelete, "/playlists/"+id, token, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}

		rec = s.do(t, http.MethodGet, "/playlists/"+id, token, nil)
		assertError(t, rec, http.StatusNotFound, "Error NotFound: playlist not found")
	})

	t.Run("list only returns own playlists", func(t *testing.T) {
		s := newTestServer(t)
		_, alice := s.signup(t, "alice@example.com")
		_, bob := s.signup(t, "bob@example.com")

		s.createPlaylist(t, alice, "alice one")
		s.createPlaylist(t, alice, "alice two")
		s.createPlaylist(t, bob, "bob one")

		rec := s.do(t, http.MethodGet, "/playlists", alice, nil)
		list := decodeList(t, rec)
		if len(list) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(list))
		}
		for _, p := range list {
			if strings.HasPrefix(p["name"].(string), "bob") {
				t.Errorf("alice can see bob's playlist %v", p["name"])
			}
		}
	})

	t.Run("empty list is an array", func(t *testing.T) {
		s := newTestServer(t)
		_, token := s.signup(t, "empty@example.com")

		rec := s.do(t, http.MethodGet, "/playlists", token, nil)
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("expected [], got %s", rec.Body.String())
		}
	})

	t.Run("foreign playlists look missing", func(t *testing.T) {
		s := newTestServer(t)
		_, alice := s.signup(t, "alice@example.com")
		_, bob := s.signup(t, "bob@example.com")

		id := s.createPlaylist(t, alice, "private")

		tt := []struct {
			method string
			path   string
			body   any
		}{
			{method: http.MethodGet, path: "/playlists/" + id},
			{method: http.MethodDelete, path: "/playlists/" + id},
			{method: http.MethodGet, path: "/playlists/" + id + "/songs"},
			{method: http.MethodPost, path: "/playlists/" + id + "/songs", body: map[string]string{"title": "t", "artist": "a"}},
		}

		for _, tc := range tt {
			t.Run(tc.method+" "+tc.path, func(t *testing.T) {
				foreign := s.do(t, tc.method, tc.path, bob, tc.body)
				missing := s.do(t, tc.method, strings.Replace(tc.path, id, "does-not-exist", 1), bob, tc.body)

				assertError(t, foreign, http.StatusNotFound, "Error NotFound: playlist not found")
				if foreign.Body.String() != missing.Body.String() {
					t.Errorf("foreign and missing responses differ: %s vs %s", foreign.Body.String(), missing.Body.String())
				}
			})
		}

		rec := s.do(t, http.MethodGet, "/playlists/"+id, alice, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("owner lost access after foreign attempts: %d", rec.Code)
		}
		if songs, _ := decodeObject(t, rec)["songs"].([]any); len(songs) != 0 {
			t.Errorf("foreign user added songs: %v", songs)
		}
	})

	t.Run("validation", func(t *testing.T) {
		s := newTestServer(t)
		_, token := s.signup(t, "val@example.com")
		id := s.createPlaylist(t, token, "mix")

		rec := s.do(t, http.MethodPost, "/playlists", token, map[string]string{"description": "no name"})
		assertError(t, rec, http.StatusBadRequest, "field Name is a required field")

		rec = s.do(t, http.MethodPost, "/playlists/"+id+"/songs", token, map[string]any{"title": "t", "artist": "a", "duration": -1})
		assertError(t, rec, http.StatusBadRequest, "field Duration must be at least 0")
	})
}

type stubResolver struct {
	err error
}

func (r stubResolver) Resolve(ctx context.Context, header string) (*models.User, error) {
	return nil, r.err
}

func TestAuthenticateStoreFailure(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	err := errors.Join(auth.ErrStoreFailure, errors.New("connection reset"))
	handler := Authenticate(stubResolver{err: err}, shared.NewLogger(io.Discard))(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlists", nil))

	assertError(t, rec, http.StatusInternalServerError, "Internal Server Error")
	if called {
		t.Error("next handler must not run after a store failure")
	}
}
