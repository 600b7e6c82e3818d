// Package logging builds the slog.Logger every shinydb component logs
// through, routing to a rotating file via lumberjack when configured.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where logs go and how verbose they are.
type Config struct {
	// FilePath, when non-empty, routes logs through a rotating
	// lumberjack.Logger instead of stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string
}

// New builds a slog.Logger per cfg. A zero Config logs to stderr at info
// level.
func New(cfg Config) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		}
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	return slog.New(handler)
}

// NewFromEnv reads level and file-path configuration from the environment:
// SHINYDB_LOG_FILE / SHINYDB_LOG_LEVEL configure the same Config New uses.
func NewFromEnv() (*slog.Logger, error) {
	cfg := Config{
		FilePath: os.Getenv("SHINYDB_LOG_FILE"),
		Level:    os.Getenv("SHINYDB_LOG_LEVEL"),
	}
	return New(cfg), nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
