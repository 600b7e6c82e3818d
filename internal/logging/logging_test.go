package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

var ctx = context.Background()

func TestNew_DefaultsToInfoLevel(t *testing.T) {
	logger := New(Config{})
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("expected info level to be enabled by default")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("expected debug level to be disabled by default")
	}
}

func TestNew_ParsesExplicitLevel(t *testing.T) {
	logger := New(Config{Level: "debug"})
	if !logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestNew_RoutesToFileWhenFilePathSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shinydb.log")

	logger := New(Config{FilePath: path, Level: "info"})
	logger.Info("hello")

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}

func TestNewFromEnv_ReadsEnvironment(t *testing.T) {
	t.Setenv("SHINYDB_LOG_LEVEL", "warn")
	t.Setenv("SHINYDB_LOG_FILE", "")

	logger, err := NewFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("expected info level to be disabled under warn")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("expected warn level to be enabled")
	}
}
