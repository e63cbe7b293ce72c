// ABOUTME: Tests for the fake backend's auth and token lifecycle
// ABOUTME: Verifies rotation, expiry and per-route call counting

package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, b *Backend, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, req)
	return rec
}

func TestRefreshRotation(t *testing.T) {
	b := New()
	id := b.AddUser(User{Username: "ada", Email: "ada@example.com"}, "pw")
	_, refresh := b.IssueTokens(id)

	rec := call(t, b, http.MethodPost, "/auth/refresh", "", `{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair["accessToken"])
	assert.NotEqual(t, refresh, pair["refreshToken"])

	rec = call(t, b, http.MethodPost, "/auth/refresh", "", `{"refreshToken":"`+refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens are single-use")
	assert.Equal(t, 2, b.Calls(http.MethodPost, "/auth/refresh"))
}

func TestRequireAuth_ExpiredJWT(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	b := New(WithAccessTTL(time.Minute), WithClock(func() time.Time { return now }))
	id := b.AddUser(User{Username: "ada", Email: "ada@example.com"}, "pw")
	access, _ := b.IssueTokens(id)

	assert.Equal(t, http.StatusOK, call(t, b, http.MethodGet, "/me", access, "").Code)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, call(t, b, http.MethodGet, "/me", access, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, b, http.MethodGet, "/me", "", "").Code)
}

func TestDeleteSelfRefused(t *testing.T) {
	b := New()
	id := b.AddUser(User{Username: "ada", Email: "ada@example.com"}, "pw")
	access, _ := b.IssueTokens(id)

	rec := call(t, b, http.MethodDelete, "/users/1", access, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEventsPaging(t *testing.T) {
	b := New()
	id := b.AddUser(User{Username: "ada", Email: "ada@example.com"}, "pw")
	access, _ := b.IssueTokens(id)

	rec := call(t, b, http.MethodGet, "/events?size=2&page=1", access, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Embedded struct {
			Events []map[string]any `json:"events"`
		} `json:"_embedded"`
		Page struct {
			TotalPages int `json:"totalPages"`
			Number     int `json:"number"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Embedded.Events, 1)
	assert.Equal(t, "evt-3", body.Embedded.Events[0]["id"])
	assert.Equal(t, 2, body.Page.TotalPages)
	assert.Equal(t, 1, body.Page.Number)
}

func TestLoginRecordsSecurityEvents(t *testing.T) {
	b := New()
	id := b.AddUser(User{Username: "ada", Email: "ada@example.com"}, "pw")

	assert.Equal(t, http.StatusUnauthorized, call(t, b, http.MethodPost, "/auth/login", "", `{"email":"ada@example.com","password":"nope"}`).Code)
	assert.Equal(t, http.StatusOK, call(t, b, http.MethodPost, "/auth/login", "", `{"email":"ADA@example.com","password":"pw"}`).Code)

	events := b.SecurityEvents(id)
	require.Len(t, events, 2)
	types := []string{events[0].Type, events[1].Type}
	assert.ElementsMatch(t, []string{"login_failure", "login_success"}, types)
}
