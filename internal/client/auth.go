// ABOUTME: Authentication endpoints: login, register, logout and current user
// ABOUTME: Login and register bypass the executor since no credentials exist yet

package client

import (
	"context"
	"fmt"
	"net/http"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /auth/login
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// RegisterRequest carries the profile fields for POST /auth/register
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RegisterResponse is the created-resource body of POST /auth/register
type RegisterResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// CurrentUserResponse is the body of GET /me
type CurrentUserResponse struct {
	User User `json:"user"`
}

// Login calls POST /auth/login and installs the returned credential pair
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.sendJSON(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err("Login failed")
	}

	var login LoginResponse
	if err := resp.Decode(&login); err != nil {
		return nil, err
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		return nil, fmt.Errorf("invalid response from backend: missing credentials")
	}

	c.tokens.SetCredentials(login.AccessToken, login.RefreshToken)
	return &login, nil
}

// Register calls POST /auth/register. It does not touch the credentials.
func (c *Client) Register(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.sendJSON(ctx, http.MethodPost, "/auth/register", input)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err("Registration failed")
	}

	var created RegisterResponse
	if len(resp.Body) > 0 {
		if err := resp.Decode(&created); err != nil {
			return nil, err
		}
	}
	return &created, nil
}

// CreateUser creates an account on behalf of an admin via the register endpoint
func (c *Client) CreateUser(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	return c.Register(ctx, input)
}

// Logout calls POST /auth/logout and always clears local credentials,
// returning the backend error (if any) for the caller to log
func (c *Client) Logout(ctx context.Context) error {
	defer c.tokens.ClearCredentials()

	resp, err := c.Do(ctx, &Request{Method: http.MethodPost, Endpoint: "/auth/logout"})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Err("Logout failed")
	}
	return nil
}

// CurrentUser calls GET /me
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out CurrentUserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &out, "Failed to get user"); err != nil {
		return nil, err
	}
	if out.User.ID == "" && out.User.Username == "" {
		return nil, fmt.Errorf("invalid response from backend: missing user")
	}
	return &out.User, nil
}
