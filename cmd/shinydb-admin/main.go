// Command shinydb-admin runs a long-lived HTTP control surface over a
// ShinyDB connection: /health for breaker and activity status, /query for
// ad-hoc text queries. When started under systemd (Type=notify) it reports
// readiness and liveness through watchdog.Notifier the same way the
// teacher's device-signing daemon did.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/shinydb/shinydb-go/internal/adminhttp"
	"github.com/shinydb/shinydb-go/internal/config"
	"github.com/shinydb/shinydb-go/internal/logging"
	"github.com/shinydb/shinydb-go/shinydb"
	"github.com/shinydb/shinydb-go/watchdog"
)

func main() {
	host := envOr("SHINYDB_HOST", "127.0.0.1")
	port, _ := strconv.Atoi(envOr("SHINYDB_PORT", "9736"))
	listenAddr := envOr("SHINYDB_ADMIN_LISTEN", "127.0.0.1:9737")

	cfg := config.Default(host, port)
	logger := logging.New(logging.Config{Level: cfg.LogLevel})

	client := shinydb.New(host, port, logger)
	client.SetTimeoutConfig(cfg.Timeouts())
	client.SetRetryPolicy(cfg.RetryPolicy())

	if err := client.Connect(); err != nil {
		fmt.Fprintln(os.Stderr, "connect failed:", err)
		os.Exit(1)
	}
	defer client.Disconnect()

	notifier := watchdog.New()
	defer notifier.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	stopPinger := notifier.StartPinger(ctx)
	defer stopPinger()

	app := adminhttp.New(client, logger)

	if err := notifier.Ready(); err != nil {
		logger.Warn("systemd ready notification failed", slog.Any("err", err))
	}

	go func() {
		<-ctx.Done()
		_ = notifier.Stopping()
		_ = app.Shutdown()
	}()

	logger.Info("admin server listening", slog.String("addr", listenAddr))
	if err := app.Listen(listenAddr); err != nil {
		fmt.Fprintln(os.Stderr, "admin server error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
