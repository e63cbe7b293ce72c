// ABOUTME: Security event history for the signed-in user
// ABOUTME: Backs the profile view's recent activity list

package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// SecurityEvent is one audit entry for the current user
type SecurityEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Label returns a human-readable name for the event type
func (e SecurityEvent) Label() string {
	switch e.Type {
	case "login_success":
		return "Successful Login"
	case "login_failure":
		return "Failed Login"
	case "logout":
		return "Logged Out"
	case "password_reset":
		return "Password Reset"
	case "account_locked":
		return "Account Locked"
	case "token_refresh":
		return "Session Refreshed"
	default:
		return strings.ReplaceAll(e.Type, "_", " ")
	}
}

// SecurityEventsResponse is the body of GET /me/security-events
type SecurityEventsResponse struct {
	Events []SecurityEvent `json:"events"`
}

// SecurityEvents calls GET /me/security-events?limit=
func (c *Client) SecurityEvents(ctx context.Context, limit int) ([]SecurityEvent, error) {
	var out SecurityEventsResponse
	endpoint := "/me/security-events?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &out, "Failed to fetch security events"); err != nil {
		return nil, err
	}
	if out.Events == nil {
		return []SecurityEvent{}, nil
	}
	return out.Events, nil
}
