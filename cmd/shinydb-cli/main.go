// Command shinydb-cli is a one-shot CLI: connect to a ShinyDB server, run a
// single text query, and print the JSON response. Argument handling is
// built on urfave/cli/v3.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/urfave/cli/v3"

	"github.com/shinydb/shinydb-go/internal/config"
	"github.com/shinydb/shinydb-go/internal/logging"
	"github.com/shinydb/shinydb-go/shinydb"
)

func main() {
	cmd := &cli.Command{
		Name:      "shinydb-cli",
		Usage:     "run a single ShinyDB text query and print the result",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "127.0.0.1", Usage: "server host"},
			&cli.IntFlag{Name: "port", Value: 9736, Usage: "server port"},
			&cli.StringFlag{Name: "timeout-preset", Value: "default", Usage: "default|fast|no_timeout"},
			&cli.IntFlag{Name: "failure-threshold", Value: 5, Usage: "circuit breaker failure threshold"},
			&cli.IntFlag{Name: "success-threshold", Value: 2, Usage: "circuit breaker success threshold"},
			&cli.StringFlag{Name: "log-level", Value: "info"},
		},
		Action: runQuery,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("usage: shinydb-cli [flags] <query>")
	}

	host := cmd.String("host")
	port := int(cmd.Int("port"))

	cfg := config.Default(host, port)
	cfg.TimeoutPreset = config.TimeoutPreset(cmd.String("timeout-preset"))
	cfg.LogLevel = cmd.String("log-level")
	cfg.Breaker.FailureThreshold = int(cmd.Int("failure-threshold"))
	cfg.Breaker.SuccessThreshold = int(cmd.Int("success-threshold"))

	logger := logging.New(logging.Config{Level: cfg.LogLevel})
	slog.SetDefault(logger)

	client := shinydb.New(host, port, logger)
	client.SetTimeoutConfig(cfg.Timeouts())
	client.SetRetryPolicy(cfg.RetryPolicy())
	client.SetCircuitBreaker(cfg.CircuitBreaker())

	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Disconnect()

	resp, err := client.RunText(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	fmt.Println(string(resp.Data))
	if resp.DocumentID != uuid.Nil {
		fmt.Printf("id: %s (%s)\n", resp.DocumentID, base58.Encode(resp.DocumentID[:]))
	}
	return nil
}
