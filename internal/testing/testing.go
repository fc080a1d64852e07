// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// MockUserStore is an in-memory test double for the user repository.
//
// Setting Err makes every call fail with it, which simulates a store outage.
type MockUserStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	Err     error
	Creates int
}

// NewMockUserStore returns an empty [MockUserStore].
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: map[string]*models.User{}}
}

// Add stores user with id and returns it.
func (m *MockUserStore) Add(id string, user *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.SetID(id)
	m.users[id] = user
	return user
}

// Remove drops the user with id, as if the account had been deleted.
func (m *MockUserStore) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *MockUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	return user, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, user := range m.users {
		if user.Email() == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.users {
		if existing.Email() == user.Email() {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateEmail, user.Email())
		}
	}
	m.Creates++
	user.SetID(shared.GenerateID())
	m.users[user.ID()] = user
	return nil
}

// Len returns the number of stored users.
func (m *MockUserStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
