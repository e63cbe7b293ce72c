// ABOUTME: Auth session state for the console and CLI
// ABOUTME: Bootstraps from a stored refresh token and tracks the signed-in user

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fanzones/console/internal/client"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user
var ErrNotAuthenticated = errors.New("not authenticated")

// State is the lifecycle position of the session
type State int

const (
	StateUnknown State = iota
	StateRefreshing
	StateLoggedIn
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateRefreshing:
		return "refreshing"
	case StateLoggedIn:
		return "logged_in"
	case StateLoggedOut:
		return "logged_out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is an immutable view of the session
type Snapshot struct {
	State           State
	CurrentUser     *client.User
	IsAuthenticated bool
	IsLoading       bool
	// Expired is set when a refresh failed behind an API call, as opposed
	// to an explicit logout
	Expired bool
}

// API is the subset of the backend client the session drives
type API interface {
	Tokens() client.TokenStore
	Refresh(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, input *client.RegisterRequest) (*client.RegisterResponse, error)
	CurrentUser(ctx context.Context) (*client.User, error)
	SetSessionExpiredHandler(fn func())
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Manager owns the current user and notifies subscribers on every change
type Manager struct {
	api    API
	logger *slog.Logger

	mu         sync.RWMutex
	state      State
	user       *client.User
	expired    bool
	loggingOut bool
	subs       []subscriber
	nextSub    int
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Manager in StateUnknown and registers itself as the
// client's session-expired handler
func New(api API, opts ...Option) *Manager {
	m := &Manager{
		api:    api,
		logger: slog.Default(),
		state:  StateUnknown,
	}
	for _, opt := range opts {
		opt(m)
	}
	api.SetSessionExpiredHandler(m.expire)
	return m
}

// Snapshot returns the current session view. CurrentUser is a copy.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     m.state,
		IsLoading: m.state == StateUnknown || m.state == StateRefreshing,
		Expired:   m.expired,
	}
	if m.user != nil {
		u := *m.user
		snap.CurrentUser = &u
		snap.IsAuthenticated = true
	}
	return snap
}

// CurrentUser returns a copy of the signed-in user or ErrNotAuthenticated
func (m *Manager) CurrentUser() (*client.User, error) {
	snap := m.Snapshot()
	if !snap.IsAuthenticated {
		return nil, ErrNotAuthenticated
	}
	return snap.CurrentUser, nil
}

// Subscribe registers fn to receive a snapshot after every state change.
// Callbacks run synchronously on the goroutine that made the change.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// set updates the state and notifies subscribers outside the lock
func (m *Manager) set(state State, user *client.User, expired bool) {
	m.mu.Lock()
	snap, subs := m.setLocked(state, user, expired)
	m.mu.Unlock()
	notify(subs, snap)
}

// setLocked updates the state and returns what to publish. m.mu must be held.
func (m *Manager) setLocked(state State, user *client.User, expired bool) (Snapshot, []subscriber) {
	m.state = state
	m.user = user
	m.expired = expired
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	return m.snapshotLocked(), subs
}

func notify(subs []subscriber, snap Snapshot) {
	for _, s := range subs {
		s.fn(snap)
	}
}

// Init restores a session from the persisted refresh token. Without one
// the session is logged out and no network call is made. Any failure
// clears the credentials; the error is returned for logging only and the
// resulting state is always LoggedIn or LoggedOut.
func (m *Manager) Init(ctx context.Context) error {
	tokens := m.api.Tokens()
	if tokens.RefreshToken() == "" {
		m.set(StateLoggedOut, nil, false)
		return nil
	}

	m.set(StateRefreshing, nil, false)

	if err := m.api.Refresh(ctx); err != nil {
		tokens.ClearCredentials()
		m.set(StateLoggedOut, nil, false)
		return fmt.Errorf("failed to restore session: %w", err)
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		tokens.ClearCredentials()
		m.set(StateLoggedOut, nil, false)
		return fmt.Errorf("failed to restore session: %w", err)
	}

	m.logger.Debug("session restored", "user", user.Username)
	m.set(StateLoggedIn, user, false)
	return nil
}

// Login authenticates and loads the profile. A rejected login leaves the
// state untouched and returns the backend's *client.APIError.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if _, err := m.api.Login(ctx, email, password); err != nil {
		return err
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.api.Tokens().ClearCredentials()
		m.set(StateLoggedOut, nil, false)
		return fmt.Errorf("failed to load profile: %w", err)
	}

	m.logger.Info("logged in", "user", user.Username)
	m.set(StateLoggedIn, user, false)
	return nil
}

// Logout ends the session. The backend call is best effort; local
// credentials are always cleared.
func (m *Manager) Logout(ctx context.Context) {
	// A refresh failing inside the logout call is not an expiry
	m.mu.Lock()
	m.loggingOut = true
	m.mu.Unlock()

	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout request failed", "error", err)
	}
	m.api.Tokens().ClearCredentials()

	m.mu.Lock()
	m.loggingOut = false
	snap, subs := m.setLocked(StateLoggedOut, nil, false)
	m.mu.Unlock()
	notify(subs, snap)
}

// Register creates an account without signing in
func (m *Manager) Register(ctx context.Context, input *client.RegisterRequest) (*client.RegisterResponse, error) {
	return m.api.Register(ctx, input)
}

// Reload refetches the current user, e.g. after editing one's own profile
func (m *Manager) Reload(ctx context.Context) error {
	if !m.Snapshot().IsAuthenticated {
		return ErrNotAuthenticated
	}
	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	if m.state != StateLoggedIn {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	snap, subs := m.setLocked(StateLoggedIn, user, false)
	m.mu.Unlock()
	notify(subs, snap)
	return nil
}

// expire is the client's session-expired hook. Only a live session can
// expire; during bootstrap Init handles the failure itself, and during an
// explicit logout the failure is just logged.
func (m *Manager) expire() {
	m.mu.Lock()
	if m.state != StateLoggedIn || m.loggingOut {
		m.mu.Unlock()
		return
	}
	snap, subs := m.setLocked(StateLoggedOut, nil, true)
	m.mu.Unlock()

	m.logger.Info("session expired")
	notify(subs, snap)
}
