// ABOUTME: Tests for the authenticated request executor and refresh protocol
// ABOUTME: Uses httptest to script backend responses and count network calls

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanzones/console/internal/tokenstore"
)

func newStore(access, refresh string) *tokenstore.Store {
	s := tokenstore.New(tokenstore.NewMemoryStorage())
	if access != "" || refresh != "" {
		s.SetCredentials(access, refresh)
	}
	return s
}

func TestDo_AttachesBearerWhenPresent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, newStore("A1", "R1"))
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/me"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_NoBearerWithoutAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, newStore("", ""))
	req := &Request{Method: http.MethodGet, Endpoint: "/users", Header: http.Header{"Authorization": {"Bearer stale"}}}
	_, err := c.Do(context.Background(), req)
	require.NoError(t, err)
}

func TestDo_RefreshAndRetry(t *testing.T) {
	var protectedCalls, refreshCalls atomic.Int32
	var retryRequestID, firstRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls.Add(1)
			assert.Empty(t, r.Header.Get("Authorization"), "refresh must not carry a bearer token")
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "R1", body["refreshToken"])
			json.NewEncoder(w).Encode(TokenPair{AccessToken: "A2", RefreshToken: "R2"})
		case "/protected":
			n := protectedCalls.Add(1)
			payload, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"name":"x"}`, string(payload), "body must be resent on retry")
			if n == 1 {
				firstRequestID = r.Header.Get("X-Request-Id")
				assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			retryRequestID = r.Header.Get("X-Request-Id")
			assert.Equal(t, "Bearer A2", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		}
	}))
	defer server.Close()

	store := newStore("A1", "R1")
	c := New(server.URL, store)

	req, err := NewJSONRequest(http.MethodPost, "/protected", map[string]string{"name": "x"})
	require.NoError(t, err)
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]bool
	require.NoError(t, resp.Decode(&out))
	assert.True(t, out["ok"])

	assert.Equal(t, int32(2), protectedCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "A2", store.AccessToken())
	assert.Equal(t, "R2", store.RefreshToken())
	assert.Equal(t, firstRequestID, retryRequestID, "retry keeps the logical request id")
}

func TestDo_AtMostOneRetry(t *testing.T) {
	var protectedCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			json.NewEncoder(w).Encode(TokenPair{AccessToken: "A2", RefreshToken: "R2"})
			return
		}
		n := protectedCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": "denied", "attempt": n})
	}))
	defer server.Close()

	c := New(server.URL, newStore("A1", "R1"))
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/users"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), protectedCalls.Load())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]any
	require.NoError(t, resp.Decode(&body))
	assert.EqualValues(t, 2, body["attempt"], "the retry's response is returned")
}

func TestDo_NoRetryWithoutRefreshToken(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized"}`))
	}))
	defer server.Close()

	c := New(server.URL, newStore("", ""))
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/me"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(resp.Body))
}

func TestDo_RefreshEndpointNeverRecurses(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := newStore("A1", "R1")
	c := New(server.URL, store)
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodPost, Endpoint: "/auth/refresh?x=1"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "R1", store.RefreshToken(), "guard path must not touch the store")
}

func TestDo_RefreshFailureReturnsOriginal401(t *testing.T) {
	var protectedCalls atomic.Int32
	var expired atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid refresh token"}`))
			return
		}
		protectedCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"original"}`))
	}))
	defer server.Close()

	store := newStore("A1", "R1")
	c := New(server.URL, store, WithSessionExpiredHandler(func() { expired.Add(1) }))

	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/users/count"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), protectedCalls.Load(), "no retry after failed refresh")
	assert.JSONEq(t, `{"error":"original"}`, string(resp.Body))
	assert.Equal(t, int32(1), expired.Load())
	access, refresh := store.Credentials()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestDo_NonAuthErrorsPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"Email already registered"}`))
	}))
	defer server.Close()

	c := New(server.URL, newStore("A1", "R1"))
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodPut, Endpoint: "/users/1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	apiErr := &APIError{}
	require.ErrorAs(t, resp.Err("Failed to update user"), &apiErr)
	assert.Equal(t, "Email already registered", apiErr.Message)
}

func TestDo_TransportFailure(t *testing.T) {
	c := New("http://localhost:99999", newStore("A1", "R1"))
	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/me"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot connect to backend")
}

func TestDo_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL, newStore("", ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, &Request{Method: http.MethodGet, Endpoint: "/me"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL, newStore("", ""))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, &Request{Method: http.MethodGet, Endpoint: "/me"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestRefresh_WithoutTokenMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := New(server.URL, newStore("", ""))
	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotRefreshable)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRefresh_LeavesPairConsistent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"accessToken":"A2","refreshToken":"R2"}`))
			},
		},
		{
			name: "success keeps refresh token when not rotated",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"accessToken":"A2"}`))
			},
		},
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: true,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: true,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"accessToken":`))
			},
			wantErr: true,
		},
		{
			name: "missing access token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"refreshToken":"R2"}`))
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			store := newStore("A1", "R1")
			err := New(server.URL, store).Refresh(context.Background())
			access, refresh := store.Credentials()

			if tc.wantErr {
				require.ErrorIs(t, err, ErrRefreshFailed)
				assert.Empty(t, access)
				assert.Empty(t, refresh)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, access)
			assert.NotEmpty(t, refresh)
		})
	}
}

func TestRefresh_TransportFailureClears(t *testing.T) {
	store := newStore("A1", "R1")
	err := New("http://localhost:99999", store).Refresh(context.Background())
	require.ErrorIs(t, err, ErrRefreshFailed)
	assert.Empty(t, store.RefreshToken())
}

func TestErrorFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		fallback string
		want     string
	}{
		{"error field", `{"error":"Invalid email or password"}`, "Login failed", "Invalid email or password"},
		{"message field", `{"message":"Nope"}`, "Login failed", "Nope"},
		{"empty object", `{}`, "Login failed", "Login failed"},
		{"not json", `<html>`, "Login failed", "Login failed"},
		{"no fallback", `<html>`, "", "backend returned status 400"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := errorFromResponse(&Response{StatusCode: http.StatusBadRequest, Body: []byte(tc.body)}, tc.fallback)
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401, Message: "x"}))
	assert.False(t, IsUnauthorized(&APIError{StatusCode: 403, Message: "x"}))
	assert.False(t, IsUnauthorized(errors.New("plain")))
}

func TestDo_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	var refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
			time.Sleep(100 * time.Millisecond)
			w.Write([]byte(`{"accessToken":"A2","refreshToken":"R2"}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer A2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	store := newStore("A1", "R1")
	c := New(server.URL, store)

	const callers = 5
	statuses := make(chan int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/users/count"})
			if err != nil {
				statuses <- -1
				return
			}
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "R2", store.RefreshToken())
}

func TestDo_RetriesWithTokenRefreshedElsewhere(t *testing.T) {
	var refreshCalls, calls atomic.Int32
	store := newStore("A1", "R1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
			return
		}
		if calls.Add(1) == 1 {
			// a concurrent caller rotates the pair while this request is in flight
			store.SetCredentials("A2", "R2")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer A2", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := New(server.URL, store).Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/me"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(0), refreshCalls.Load())
	assert.Equal(t, int32(2), calls.Load())
}

// clearedMidway hands out the refresh token once, then drops the pair, the
// way a failed refresh in another goroutine would
type clearedMidway struct {
	*tokenstore.Store
	once sync.Once
}

func (s *clearedMidway) RefreshToken() string {
	refresh := s.Store.RefreshToken()
	s.once.Do(s.Store.ClearCredentials)
	return refresh
}

func TestDo_CredentialsClearedElsewhereReturnsOriginal401(t *testing.T) {
	var refreshCalls, calls atomic.Int32
	store := &clearedMidway{Store: newStore("A1", "R1")}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"first"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL, store).Do(context.Background(), &Request{Method: http.MethodGet, Endpoint: "/me"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"first"}`, string(resp.Body))
	assert.Equal(t, int32(1), calls.Load(), "no bearer-less retry")
	assert.Equal(t, int32(0), refreshCalls.Load())
}
