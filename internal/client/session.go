package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"paperback/internal/domain"
)

// State is what survives restarts: the bearer token and the last-known user.
type State struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// Store persists session state between runs.
type Store interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// FileStore keeps the session in a JSON file, the desktop analog of the
// browser's local storage.
type FileStore struct{ Path string }

func (f *FileStore) Load() (State, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, err
	}
	return st, nil
}

func (f *FileStore) Save(st State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0600)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu sync.Mutex
	st State
}

func (m *MemStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *MemStore) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = State{}
	return nil
}

// Session is the explicit holder of auth state. It reads the persisted state
// once at construction and writes through on every change, so there is no
// shared global to reason about.
type Session struct {
	mu    sync.RWMutex
	store Store
	state State
}

func NewSession(store Store) (*Session, error) {
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, state: st}, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

func (s *Session) Set(token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Token: token, User: user}
	return s.store.Save(s.state)
}

func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	return s.store.Clear()
}

// Routes the view layer lands on after login, by role.
const (
	AdminDashboardRoute = "/admin/dashboard"
	UserDashboardRoute  = "/dashboard"
	LoginRoute          = "/login"
)

func LandingRoute(role string) string {
	if role == domain.RoleAdmin {
		return AdminDashboardRoute
	}
	return UserDashboardRoute
}
