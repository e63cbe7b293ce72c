// ABOUTME: console command launching the interactive terminal UI
// ABOUTME: Logs go to a file in the config directory so they don't corrupt the screen

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fanzones/console/internal/config"
	"github.com/fanzones/console/internal/logger"
	"github.com/fanzones/console/internal/recent"
	"github.com/fanzones/console/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive admin console",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runConsole(cfg)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cfg *config.Config) error {
	logDir := cfg.ConfigDir
	if cfg.Ephemeral {
		logDir = ""
	}
	log, err := logger.InitFile(logDir, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	a := buildApp(cfg, log)

	deps := tui.Deps{
		API:           a.client,
		Session:       a.session,
		UserPageSize:  cfg.UserPageSize,
		EventPageSize: cfg.EventPageSize,
		Logger:        log,
	}
	if !cfg.Ephemeral {
		deps.Recents = recent.New(cfg.ConfigDir)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("console started", "api_url", cfg.APIURL)
	return tui.Run(ctx, deps)
}
