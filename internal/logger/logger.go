// ABOUTME: Structured logging configuration using log/slog
// ABOUTME: CLI commands log to stderr; the TUI logs to a file so the terminal stays clean

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogFileName is the file the console writes to inside the config dir
const LogFileName = "debug.log"

var (
	mu      sync.Mutex
	logFile *os.File
)

// New builds a logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init configures the default slog logger to write to stderr
func Init(level, format string) *slog.Logger {
	l := New(os.Stderr, level, format)
	slog.SetDefault(l)
	return l
}

// InitFile configures the default slog logger to append to debug.log in
// configDir. With an empty configDir logging is discarded.
func InitFile(configDir, level, format string) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	if configDir == "" {
		l := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(l)
		return l, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(configDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	l := New(f, level, format)
	slog.SetDefault(l)
	return l, nil
}

// Close closes the log file opened by InitFile, if any
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
