// ABOUTME: HTTP client for the FanZones backend API
// ABOUTME: Injects bearer credentials and recovers from 401s with one refresh-and-retry

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTimeout bounds every HTTP round trip made by the client
	DefaultTimeout = 30 * time.Second

	// RefreshEndpoint is never retried through the refresh protocol
	RefreshEndpoint = "/auth/refresh"

	maxResponseBytes = 10 << 20
)

// TokenStore is the credential store the client reads from and writes to
type TokenStore interface {
	SetCredentials(access, refresh string)
	ClearCredentials()
	AccessToken() string
	RefreshToken() string
	Credentials() (access, refresh string)
}

// Client is the API client for the FanZones backend
type Client struct {
	baseURL          string
	httpClient       *http.Client
	tokens           TokenStore
	logger           *slog.Logger
	onSessionExpired func()
	refreshGroup     singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSessionExpiredHandler registers a callback fired when a refresh
// triggered by a 401 fails and the credentials have been cleared
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// New creates a new API client with the given base URL and token store
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tokens returns the store backing this client
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// SetSessionExpiredHandler replaces the session-expired callback
func (c *Client) SetSessionExpiredHandler(fn func()) {
	c.onSessionExpired = fn
}

// Request describes one logical API call. Body is buffered so the call
// can be reissued after a refresh.
type Request struct {
	Method   string
	Endpoint string // path plus optional query, relative to the base URL
	Header   http.Header
	Body     []byte
}

// NewJSONRequest builds a Request with payload marshalled as JSON
func NewJSONRequest(method, endpoint string, payload any) (*Request, error) {
	req := &Request{Method: method, Endpoint: endpoint}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req.Body = body
	return req, nil
}

// Response is a fully read backend response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// Err converts a non-2xx response into an *APIError, using fallback when
// the backend did not supply a message
func (r *Response) Err(fallback string) error {
	return errorFromResponse(r, fallback)
}

// Do executes req with bearer injection. On 401 it runs the refresh
// protocol once and reissues the request at most once; the retry's
// result is returned as-is. If the stored access token changed while the
// request was in flight, the retry uses it without another refresh.
// HTTP-level failures are returned as responses; only transport failures
// and cancellation produce an error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	requestID := uuid.NewString()

	resp, used, err := c.attempt(ctx, req, requestID)
	if err != nil {
		return nil, err
	}
	if !c.shouldRefresh(req, resp) {
		return resp, nil
	}

	// Another call may have refreshed while this one was in flight. A pair
	// cleared by a failed refresh elsewhere goes to Refresh, which reports
	// it without a network call.
	if access, refresh := c.tokens.Credentials(); refresh != "" && access != used {
		c.logger.Debug("retrying with token refreshed elsewhere", "endpoint", req.Endpoint, "request_id", requestID)
		resp, _, err = c.attempt(ctx, req, requestID)
		return resp, err
	}

	if err := c.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, c.handleRequestError(ctx, err)
		}
		c.logger.Info("session refresh failed", "endpoint", req.Endpoint, "request_id", requestID, "error", err)
		if errors.Is(err, ErrRefreshFailed) && c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return resp, nil
	}

	c.logger.Debug("retrying after refresh", "endpoint", req.Endpoint, "request_id", requestID)
	resp, _, err = c.attempt(ctx, req, requestID)
	return resp, err
}

// shouldRefresh reports whether resp qualifies for the refresh-and-retry path
func (c *Client) shouldRefresh(req *Request, resp *Response) bool {
	if resp.StatusCode != http.StatusUnauthorized {
		return false
	}
	if c.tokens.RefreshToken() == "" {
		return false
	}
	return !isRefreshEndpoint(req.Endpoint)
}

func isRefreshEndpoint(endpoint string) bool {
	path := endpoint
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.TrimRight(path, "/") == RefreshEndpoint
}

// attempt issues req once with the current access token and returns the
// token it used
func (c *Client) attempt(ctx context.Context, req *Request, requestID string) (*Response, string, error) {
	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	token := c.tokens.AccessToken()
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	} else {
		header.Del("Authorization")
	}
	header.Set("X-Request-Id", requestID)

	resp, err := c.send(ctx, req.Method, req.Endpoint, header, req.Body)
	return resp, token, err
}

// send performs a single round trip without any auth handling
func (c *Client) send(ctx context.Context, method, endpoint string, header http.Header, body []byte) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	c.logger.Debug("backend call", "method", method, "endpoint", endpoint, "status", httpResp.StatusCode)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// sendJSON posts payload without credentials, for the public auth endpoints
func (c *Client) sendJSON(ctx context.Context, method, endpoint string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	header := http.Header{}
	header.Set("X-Request-Id", uuid.NewString())
	return c.send(ctx, method, endpoint, header, body)
}

// doJSON runs an authenticated call and decodes a 2xx body into out.
// Non-2xx responses become *APIError with fallback as the default message.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any, fallback string) error {
	req, err := NewJSONRequest(method, endpoint, payload)
	if err != nil {
		return err
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Err(fallback)
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ctx.Err())
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}
