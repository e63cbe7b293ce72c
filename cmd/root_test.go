// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration and exit code mapping

package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/session"
)

func TestLoadConfig_Default(t *testing.T) {
	t.Setenv("FANZONES_API_URL", "")
	os.Unsetenv("FANZONES_API_URL")
	t.Setenv("FANZONES_CONFIG", "")
	apiURL = ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8787" {
		t.Errorf("expected default URL http://localhost:8787, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("FANZONES_API_URL", "http://backend.example.com")
	t.Setenv("FANZONES_CONFIG", "")
	apiURL = ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("FANZONES_API_URL", "http://backend.example.com")
	t.Setenv("FANZONES_CONFIG", "")
	apiURL = "http://flag-override.example.com"
	defer func() { apiURL = "" }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	t.Setenv("FANZONES_CONFIG", "")
	apiURL = "ftp://files.example.com"
	defer func() { apiURL = "" }()

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected an error for a non-http URL")
	}
}

func TestLoadConfig_EphemeralFlag(t *testing.T) {
	t.Setenv("FANZONES_CONFIG", "")
	ephemeral = true
	defer func() { ephemeral = false }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Ephemeral {
		t.Error("expected --ephemeral to force memory-only credentials")
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &client.APIError{StatusCode: http.StatusNotFound, Message: "User not found"}, exitRejected},
		{"conflict", &client.APIError{StatusCode: http.StatusConflict, Message: "Email already registered"}, exitRejected},
		{"server error", &client.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}, exitError},
		{"not authenticated", session.ErrNotAuthenticated, exitRejected},
		{"refresh failed", client.ErrRefreshFailed, exitRejected},
		{"network", errors.New("connection refused"), exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := reportError(&buf, tt.err); got != tt.want {
				t.Errorf("reportError() = %d, want %d", got, tt.want)
			}
			if !strings.HasPrefix(buf.String(), "Error: ") {
				t.Errorf("expected an Error: line, got %q", buf.String())
			}
		})
	}
}
