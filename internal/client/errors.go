// ABOUTME: Error taxonomy for backend calls
// ABOUTME: Sentinel errors for the refresh protocol and APIError for backend-supplied messages

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotRefreshable is returned by Refresh when no refresh token is stored
	ErrNotRefreshable = errors.New("no refresh token available")

	// ErrRefreshFailed is returned by Refresh after the credentials were cleared
	ErrRefreshFailed = errors.New("session refresh failed")
)

// ErrorResponse is the error body returned by the backend
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// Unauthorized reports whether the backend rejected the credentials
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is an APIError with status 401
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// errorFromResponse parses the backend error payload, falling back to
// fallback when the body carries no message
func errorFromResponse(resp *Response, fallback string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallback}

	var body ErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		}
		return apiErr
	}

	switch {
	case body.Error != "":
		apiErr.Message = body.Error
	case body.Message != "":
		apiErr.Message = body.Message
	case apiErr.Message == "":
		apiErr.Message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	apiErr.Details = body.Details
	return apiErr
}
