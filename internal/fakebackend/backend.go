// ABOUTME: In-process fake of the FanZones backend for tests and demos
// ABOUTME: Issues short-lived JWT access tokens and rotating refresh tokens behind a chi router

package fakebackend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAccessTTL is the lifetime of issued access tokens
const DefaultAccessTTL = 15 * time.Minute

var signingKey = []byte("fakebackend-signing-key")

// User is the backend's user record
type User struct {
	ID            int        `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`

	password string
}

// SecurityEvent is an audit entry
type SecurityEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	userID int
}

// Backend is a stateful fake backend. The zero value is not usable; call New.
type Backend struct {
	mu sync.Mutex

	router    chi.Router
	users     []*User
	nextID    int
	access    map[string]int // access token -> user id
	refresh   map[string]int // refresh token -> user id
	events    []Event
	security  []SecurityEvent
	calls     map[string]int
	accessTTL time.Duration

	rejectRefresh bool
	now           func() time.Time
}

// Option configures a Backend
type Option func(*Backend)

// WithAccessTTL overrides the access token lifetime
func WithAccessTTL(d time.Duration) Option {
	return func(b *Backend) { b.accessTTL = d }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// New creates a Backend with no users and the sample events loaded
func New(opts ...Option) *Backend {
	b := &Backend{
		nextID:    1,
		access:    map[string]int{},
		refresh:   map[string]int{},
		calls:     map[string]int{},
		accessTTL: DefaultAccessTTL,
		now:       time.Now,
		events:    SampleEvents(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.router = b.routes()
	return b
}

// Start serves the backend on a loopback httptest server
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b)
}

// ServeHTTP implements http.Handler
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.Method+" "+r.URL.Path]++
	b.mu.Unlock()
	b.router.ServeHTTP(w, r)
}

func (b *Backend) routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/login", b.handleLogin)
	r.Post("/auth/register", b.handleRegister)
	r.Post("/auth/refresh", b.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(b.requireAuth)

		r.Post("/auth/logout", b.handleLogout)
		r.Get("/me", b.handleMe)
		r.Get("/me/security-events", b.handleSecurityEvents)

		r.Get("/users", b.handleListUsers)
		r.Get("/users/count", b.handleCountUsers)
		r.Get("/users/{id}", b.handleGetUser)
		r.Put("/users/{id}", b.handleUpdateUser)
		r.Delete("/users/{id}", b.handleDeleteUser)

		r.Get("/events", b.handleSearchEvents)
		r.Get("/events/{id}", b.handleGetEvent)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

// Calls returns how many times method+path was requested
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// AddUser seeds an account and returns its id
func (b *Backend) AddUser(u User, password string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(u, password).ID
}

func (b *Backend) addUserLocked(u User, password string) *User {
	rec := u
	rec.ID = b.nextID
	b.nextID++
	rec.password = password
	rec.IsActive = true
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = b.now()
	}
	b.users = append(b.users, &rec)
	return &rec
}

// IssueTokens mints a credential pair for userID, as a login would
func (b *Backend) IssueTokens(userID int) (access, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(userID)
}

func (b *Backend) issueLocked(userID int) (string, string) {
	now := b.now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprint(userID),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.accessTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	refresh := uuid.NewString()
	b.access[access] = userID
	b.refresh[refresh] = userID
	return access, refresh
}

// ExpireAccessTokens invalidates every outstanding access token, as if
// they had all timed out
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = map[string]int{}
}

// RevokeRefreshTokens invalidates every outstanding refresh token
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh = map[string]int{}
}

// RejectRefresh makes /auth/refresh fail with 401 regardless of the token
func (b *Backend) RejectRefresh(reject bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectRefresh = reject
}

// HasRefreshToken reports whether token is currently accepted
func (b *Backend) HasRefreshToken(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.refresh[token]
	return ok
}

// SecurityEvents returns the recorded audit trail for userID, newest first
func (b *Backend) SecurityEvents(userID int) []SecurityEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.securityLocked(userID, 0)
}

func (b *Backend) securityLocked(userID, limit int) []SecurityEvent {
	var out []SecurityEvent
	for _, e := range b.security {
		if e.userID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (b *Backend) recordLocked(userID int, kind string, r *http.Request) {
	b.security = append(b.security, SecurityEvent{
		ID:        uuid.NewString(),
		Type:      kind,
		IP:        clientIP(r),
		CreatedAt: b.now(),
		userID:    userID,
	})
}

func (b *Backend) userLocked(id int) *User {
	for _, u := range b.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

type ctxKey struct{}

// requireAuth resolves the bearer token to a user id
func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		b.mu.Lock()
		userID, known := b.access[token]
		b.mu.Unlock()
		if !known {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if _, err := jwt.NewParser(jwt.WithTimeFunc(b.now)).Parse(token, func(*jwt.Token) (any, error) {
			return signingKey, nil
		}); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("fakebackend: failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
