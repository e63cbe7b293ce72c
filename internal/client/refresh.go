// ABOUTME: Refresh protocol exchanging the refresh token for a new credential pair
// ABOUTME: Fails closed and coalesces concurrent refreshes of the same token

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TokenPair is the credential pair returned by login and refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges the stored refresh token for a new pair. It talks to
// the transport directly so no bearer header is injected, and it never
// recurses into Do.
//
// Callers presenting the same refresh token share one exchange, since the
// backend rotates refresh tokens and a second exchange of a consumed token
// would fail and sign the user out. The shared exchange is not canceled by
// any single caller; a caller whose ctx ends stops waiting and gets
// ctx.Err() while the exchange completes and updates the store.
func (c *Client) Refresh(ctx context.Context) error {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		return ErrNotRefreshable
	}

	ch := c.refreshGroup.DoChan(refreshToken, func() (any, error) {
		return nil, c.refresh(context.WithoutCancel(ctx), refreshToken)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	pair, err := c.exchange(ctx, refreshToken)
	if err != nil {
		c.tokens.ClearCredentials()
		c.logger.Debug("token refresh failed", "error", err)
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	c.tokens.SetCredentials(pair.AccessToken, pair.RefreshToken)
	c.logger.Debug("token refreshed")
	return nil
}

func (c *Client) exchange(ctx context.Context, refreshToken string) (*TokenPair, error) {
	resp, err := c.sendJSON(ctx, http.MethodPost, RefreshEndpoint, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err("Token refresh failed")
	}

	var pair TokenPair
	if err := json.Unmarshal(resp.Body, &pair); err != nil {
		return nil, fmt.Errorf("invalid refresh response: %w", err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("invalid refresh response: missing access token")
	}
	return &pair, nil
}
