// ABOUTME: User management endpoints and user model
// ABOUTME: List, count, fetch, update and delete users through the authenticated executor

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// UserID accepts both numeric and string identifiers from the backend
type UserID string

// UnmarshalJSON implements json.Unmarshaler
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid user id %s: %w", data, err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string {
	return string(id)
}

// User is a backend user record
type User struct {
	ID            UserID     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	EmailVerified bool       `json:"email_verified,omitempty"`
	PhoneVerified bool       `json:"phone_verified,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns "First Last" when both are set, otherwise the username
func (u *User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// GreetingName returns the first name, falling back to the username
func (u *User) GreetingName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// Initials returns the avatar initials for the user
func (u *User) Initials() string {
	if u.FirstName != "" && u.LastName != "" {
		return strings.ToUpper(string([]rune(u.FirstName)[0:1]) + string([]rune(u.LastName)[0:1]))
	}
	if u.Username != "" {
		return strings.ToUpper(string([]rune(u.Username)[0:1]))
	}
	return "U"
}

// Matches reports whether query appears in the username, email or name
func (u *User) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{u.Username, u.Email, u.FirstName, u.LastName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// UserList is the body of GET /users
type UserList struct {
	Users  []User `json:"users"`
	Total  int    `json:"total,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// UserStats is the body of GET /users/count
type UserStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Verified int `json:"verified"`
}

// VerificationRate returns verified/active as a rounded percentage
func (s UserStats) VerificationRate() int {
	if s.Active <= 0 {
		return 0
	}
	return int(float64(s.Verified)/float64(s.Active)*100 + 0.5)
}

// UserUpdate is the body of PUT /users/{id}; nil fields are left unchanged
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// UserResponse wraps a single user
type UserResponse struct {
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is a bare acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// ListUsers calls GET /users?limit=&offset=
func (c *Client) ListUsers(ctx context.Context, limit, offset int) (*UserList, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var list UserList
	if err := c.doJSON(ctx, http.MethodGet, "/users?"+q.Encode(), nil, &list, "Failed to fetch users"); err != nil {
		return nil, err
	}
	if list.Users == nil {
		list.Users = []User{}
	}
	return &list, nil
}

// UserCount calls GET /users/count
func (c *Client) UserCount(ctx context.Context) (*UserStats, error) {
	var stats UserStats
	if err := c.doJSON(ctx, http.MethodGet, "/users/count", nil, &stats, "Failed to fetch user count"); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetUser calls GET /users/{id}
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out, "Failed to fetch user"); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateUser calls PUT /users/{id}
func (c *Client) UpdateUser(ctx context.Context, id string, update *UserUpdate) (*UserResponse, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id), update, &out, "Failed to update user"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser calls DELETE /users/{id}
func (c *Client) DeleteUser(ctx context.Context, id string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, &out, "Failed to delete user"); err != nil {
		return nil, err
	}
	return &out, nil
}
