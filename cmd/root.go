// ABOUTME: Root command for the fanzones CLI
// ABOUTME: Handles global flags, configuration and shared command wiring

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/config"
	"github.com/fanzones/console/internal/logger"
	"github.com/fanzones/console/internal/session"
	"github.com/fanzones/console/internal/tokenstore"
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1 // not authenticated, or the backend refused the request
	exitError    = 2
)

var (
	apiURL     string
	configPath string
	jsonOutput bool
	ephemeral  bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "fanzones",
	Short: "Admin console for the FanZones backend",
	Long: `fanzones is the admin console for the FanZones user and event backend.

Run "fanzones console" for the interactive terminal UI, or use the
subcommands for scripting. Credentials are kept between runs: only the
refresh token is stored, in the config directory with 0600 permissions.

Environment Variables:
  FANZONES_API_URL     Backend API URL (default: http://localhost:8787)
  FANZONES_CONFIG      Path to a YAML, JSON or TOML config file
  FANZONES_CONFIG_DIR  Directory for credentials and logs
  FANZONES_TIMEOUT     Per-request timeout (default: 30s)
  LOG_LEVEL            debug, info, warn, error (default: info)
  LOG_FORMAT           text, json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides FANZONES_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (overrides FANZONES_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep credentials in memory only")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig resolves configuration with the --api-url flag taking priority
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.OverrideAPIURL(apiURL); err != nil {
		return nil, err
	}
	if ephemeral {
		cfg.Ephemeral = true
	}
	return cfg, nil
}

// app bundles the components a command needs
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	tokens  *tokenstore.Store
	client  *client.Client
	session *session.Manager
}

// newApp wires config, logging, credential storage, the API client and
// the session manager. Logs go to stderr.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	return buildApp(cfg, log), nil
}

func buildApp(cfg *config.Config, log *slog.Logger) *app {
	var storage tokenstore.Storage
	if cfg.Ephemeral {
		storage = tokenstore.NewMemoryStorage()
	} else {
		storage = tokenstore.NewFileStorage(cfg.ConfigDir)
	}
	tokens := tokenstore.New(storage, tokenstore.WithLogger(log))

	c := client.New(cfg.APIURL, tokens,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(log),
	)
	return &app{
		cfg:     cfg,
		logger:  log,
		tokens:  tokens,
		client:  c,
		session: session.New(c, session.WithLogger(log)),
	}
}

// requireLogin restores the session and reports whether a user is signed in
func (a *app) requireLogin(ctx context.Context, w io.Writer) bool {
	if err := a.session.Init(ctx); err != nil {
		a.logger.Debug("session restore failed", "error", err)
	}
	if !a.session.Snapshot().IsAuthenticated {
		fmt.Fprintln(w, "Not logged in. Run 'fanzones login' first.")
		return false
	}
	return true
}

// runWithSignals runs fn with a context canceled on SIGINT/SIGTERM and
// exits with its code
func runWithSignals(fn func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	exitCode := fn(ctx, os.Stdout)
	if exitCode != exitOK {
		cancel()
		os.Exit(exitCode)
	}
}

// withApp builds the app and hands it to fn, mapping setup errors to exitError
func withApp(ctx context.Context, w io.Writer, fn func(ctx context.Context, w io.Writer, a *app) int) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return fn(ctx, w, a)
}

// reportError prints err and maps it to an exit code: backend rejections
// and missing sessions are 1, everything else 2
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return exitRejected
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, client.ErrRefreshFailed):
		return exitRejected
	default:
		return exitError
	}
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}
