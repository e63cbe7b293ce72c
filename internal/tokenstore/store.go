// ABOUTME: Token store holding the access/refresh credential pair
// ABOUTME: Access token stays in memory, refresh token is persisted to durable storage

package tokenstore

import (
	"log/slog"
	"sync"
)

// RefreshTokenKey is the fixed durable-storage key for the refresh token
const RefreshTokenKey = "refreshToken"

// Store is the single source of truth for the current credentials.
// It never returns errors: if durable storage fails it keeps working
// from memory for the rest of the process lifetime.
type Store struct {
	mu          sync.RWMutex
	storage     Storage
	durable     bool
	accessToken string
	refresh     string
	logger      *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used to report storage failures
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store and loads any persisted refresh token from storage.
// A nil storage gives a memory-only store.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		durable: storage != nil,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.durable {
		if v, ok := storage.Get(RefreshTokenKey); ok {
			s.refresh = v
		}
	}
	return s
}

// SetCredentials installs the access token and, when refresh is non-empty,
// replaces the persisted refresh token
func (s *Store) SetCredentials(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = access
	if refresh == "" {
		return
	}
	s.refresh = refresh

	if !s.durable {
		return
	}
	if err := s.storage.Set(RefreshTokenKey, refresh); err != nil {
		s.logger.Debug("refresh token not persisted, continuing in memory", "error", err)
		s.durable = false
	}
}

// ClearCredentials drops both tokens and deletes the durable entry, also
// in memory-only mode. Safe to call when already cleared.
func (s *Store) ClearCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = ""
	s.refresh = ""

	// Attempted even after a failed write, so a token persisted earlier
	// cannot outlive the logout
	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(RefreshTokenKey); err != nil {
		s.logger.Debug("stored refresh token not deleted", "error", err)
		s.durable = false
	}
}

// AccessToken returns the in-memory access token, or "" when unset
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, or "" when unset
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Credentials returns both tokens under one lock so callers never see a torn pair
func (s *Store) Credentials() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refresh
}

// Durable reports whether the store is still writing through to storage
func (s *Store) Durable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.durable
}
