// ABOUTME: Read-only inspection of access token claims
// ABOUTME: Used to show who the token belongs to and when it expires; never used for trust decisions

package client

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is the subset of access-token claims shown to the user
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn returns the time left before expiry, or 0 when unknown or past
func (t *TokenInfo) ExpiresIn(now time.Time) time.Duration {
	if t.ExpiresAt.IsZero() || now.After(t.ExpiresAt) {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}

// InspectToken decodes a JWT without verifying its signature. Opaque
// tokens return an error.
func InspectToken(raw string) (*TokenInfo, error) {
	if raw == "" {
		return nil, errors.New("no token")
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, err
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
