// ABOUTME: Route handlers for the fake backend
// ABOUTME: Auth, current user, user CRUD and security events

package fakebackend

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func withUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func userIDFrom(ctx context.Context) int {
	id, _ := ctx.Value(ctxKey{}).(int)
	return id
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if !strings.EqualFold(u.Email, req.Email) {
			continue
		}
		if u.password != req.Password || !u.IsActive {
			b.recordLocked(u.ID, "login_failure", r)
			break
		}
		access, refresh := b.issueLocked(u.ID)
		b.recordLocked(u.ID, "login_success", r)
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken":  access,
			"refreshToken": refresh,
			"user":         u,
		})
		return
	}
	writeError(w, http.StatusUnauthorized, "Invalid email or password")
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch {
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	case !usernamePattern.MatchString(req.Username):
		writeError(w, http.StatusBadRequest, "Username must be 3-30 chars, alphanumeric and underscores only")
		return
	case len(req.Password) < 12:
		writeError(w, http.StatusBadRequest, "Password must be at least 12 characters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if strings.EqualFold(u.Email, req.Email) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		if strings.EqualFold(u.Username, req.Username) {
			writeError(w, http.StatusConflict, "Username already taken")
			return
		}
	}

	u := b.addUserLocked(User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, req.Password)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered", "user": u})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	userID, ok := b.refresh[req.RefreshToken]
	if !ok || b.rejectRefresh {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// Rotate: the presented refresh token is single-use
	delete(b.refresh, req.RefreshToken)
	access, refresh := b.issueLocked(userID)
	b.recordLocked(userID, "token_refresh", r)
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access, "refreshToken": refresh})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	b.mu.Lock()
	for tok, id := range b.refresh {
		if id == userID {
			delete(b.refresh, tok)
		}
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	delete(b.access, token)
	b.recordLocked(userID, "logout", r)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.userLocked(userIDFrom(r.Context()))
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (b *Backend) handleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	b.mu.Lock()
	events := b.securityLocked(userIDFrom(r.Context()), limit)
	b.mu.Unlock()

	if events == nil {
		events = []SecurityEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (b *Backend) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	b.mu.Lock()
	defer b.mu.Unlock()

	active := make([]*User, 0, len(b.users))
	for _, u := range b.users {
		if u.IsActive {
			active = append(active, u)
		}
	}

	start := min(offset, len(active))
	end := min(start+limit, len(active))
	writeJSON(w, http.StatusOK, map[string]any{
		"users":  active[start:end],
		"total":  len(active),
		"limit":  limit,
		"offset": offset,
	})
}

func (b *Backend) handleCountUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]int{"total": len(b.users), "active": 0, "verified": 0}
	for _, u := range b.users {
		if u.IsActive {
			stats["active"]++
			if u.EmailVerified {
				stats["verified"]++
			}
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) lookupLocked(w http.ResponseWriter, r *http.Request) *User {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return nil
	}
	u := b.userLocked(id)
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return nil
	}
	return u
}

func (b *Backend) handleGetUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if u := b.lookupLocked(w, r); u != nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": u})
	}
}

type updateRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

func (b *Backend) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username != nil && !usernamePattern.MatchString(*req.Username) {
		writeError(w, http.StatusBadRequest, "Username must be 3-30 chars, alphanumeric and underscores only")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.lookupLocked(w, r)
	if u == nil {
		return
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	now := b.now()
	u.UpdatedAt = &now
	writeJSON(w, http.StatusOK, map[string]any{"message": "User updated", "user": u})
}

func (b *Backend) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.lookupLocked(w, r)
	if u == nil {
		return
	}
	if u.ID == userIDFrom(r.Context()) {
		writeError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}
	// Deletion deactivates the account
	u.IsActive = false
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deactivated"})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
