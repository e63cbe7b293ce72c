// ABOUTME: Tests for configuration loading and precedence
// ABOUTME: Covers defaults, config files, environment overrides and the API URL flag

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FANZONES_API_URL", "FANZONES_TIMEOUT", "FANZONES_CONFIG_DIR", "FANZONES_EPHEMERAL",
		"FANZONES_USER_PAGE_SIZE", "FANZONES_EVENT_PAGE_SIZE", ConfigPathEnv, "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.UserPageSize)
	assert.Equal(t, 20, cfg.EventPageSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), cfg.ConfigDir)
	assert.False(t, cfg.Ephemeral)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FANZONES_API_URL", "https://api.example.com")
	t.Setenv("FANZONES_TIMEOUT", "5s")
	t.Setenv("FANZONES_EPHEMERAL", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Ephemeral)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "api_url: http://file.example.com:9000\nuser_page_size: 25\nconfig_dir: /tmp/fz\nlog:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example.com:9000", cfg.APIURL)
	assert.Equal(t, 25, cfg.UserPageSize)
	assert.Equal(t, 20, cfg.EventPageSize, "unset fields keep defaults")
	assert.Equal(t, "/tmp/fz", cfg.ConfigDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "api_url: http://from-env-path.example.com\n")
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://from-env-path.example.com", cfg.APIURL)
}

func TestLoad_EnvironmentBeatsFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "api_url: http://file.example.com\n")
	t.Setenv("FANZONES_API_URL", "http://env.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com", cfg.APIURL)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_InvalidURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("FANZONES_API_URL", "localhost:8787")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API URL")
}

func TestOverrideAPIURL(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.OverrideAPIURL(""))
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)

	require.NoError(t, cfg.OverrideAPIURL("https://flag.example.com"))
	assert.Equal(t, "https://flag.example.com", cfg.APIURL)

	assert.Error(t, cfg.OverrideAPIURL("ftp://nope"))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.EventPageSize = 0
	assert.Error(t, cfg.Validate())
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/fanzones", DefaultConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "fanzones"), DefaultConfigDir())
}
