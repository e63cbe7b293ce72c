// ABOUTME: Configuration loader for the console and CLI
// ABOUTME: Reads an optional config file and .env, with environment variables taking precedence

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	// AppName names the XDG config subdirectory
	AppName = "fanzones"

	// DefaultAPIURL is used when no other source sets the backend URL
	DefaultAPIURL = "http://localhost:8787"

	// ConfigPathEnv selects a config file when --config is not given
	ConfigPathEnv = "FANZONES_CONFIG"
)

// Config is the resolved client configuration.
// Priority: --api-url flag, then environment, then config file, then defaults.
type Config struct {
	APIURL        string        `yaml:"api_url"         json:"api_url"         env:"FANZONES_API_URL"         env-default:"http://localhost:8787"`
	Timeout       time.Duration `yaml:"timeout"         json:"timeout"         env:"FANZONES_TIMEOUT"         env-default:"30s"`
	ConfigDir     string        `yaml:"config_dir"      json:"config_dir"      env:"FANZONES_CONFIG_DIR"`
	Ephemeral     bool          `yaml:"ephemeral"       json:"ephemeral"       env:"FANZONES_EPHEMERAL"`
	UserPageSize  int           `yaml:"user_page_size"  json:"user_page_size"  env:"FANZONES_USER_PAGE_SIZE"  env-default:"10"`
	EventPageSize int           `yaml:"event_page_size" json:"event_page_size" env:"FANZONES_EVENT_PAGE_SIZE" env-default:"20"`
	Log           LogConfig     `yaml:"log"             json:"log"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `yaml:"level"  json:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load resolves the configuration. path is the --config flag value; when
// empty, FANZONES_CONFIG is consulted. A .env file in the working
// directory is loaded first without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with every default applied and no
// file or environment input
func Default() *Config {
	return &Config{
		APIURL:        DefaultAPIURL,
		Timeout:       30 * time.Second,
		ConfigDir:     DefaultConfigDir(),
		UserPageSize:  10,
		EventPageSize: 20,
		Log:           LogConfig{Level: "info", Format: "text"},
	}
}

// OverrideAPIURL applies the --api-url flag, which beats every other source
func (c *Config) OverrideAPIURL(flag string) error {
	if flag == "" {
		return nil
	}
	c.APIURL = flag
	return c.Validate()
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: must be an absolute http(s) URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if c.UserPageSize <= 0 || c.EventPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}
