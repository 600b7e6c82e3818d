// Package adminhttp is a small Fiber-based control surface over a
// shinydb.Client, adapted from app/host/http.go's key-signing endpoints: the
// same recover+logger middleware stack and route-per-concern shape, now
// exposing health/breaker status and a text-query passthrough instead of
// BLS signing operations.
package adminhttp

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/shinydb/shinydb-go/shinydb"
)

type queryReq struct {
	Query string `json:"query"`
}

type queryResp struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Count   uint32 `json:"count"`
}

type healthResp struct {
	Connected            bool   `json:"connected"`
	BreakerState         string `json:"breaker_state"`
	RequestCount         uint64 `json:"request_count"`
	FailureCount         uint64 `json:"failure_count"`
	SecondsSinceActivity int64  `json:"seconds_since_activity"`
}

// New builds a Fiber app exposing /health and /query over client.
func New(client *shinydb.Client, l *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		h := client.Health()
		return c.JSON(healthResp{
			Connected:            client.IsConnected(),
			BreakerState:         client.CircuitBreaker().State().String(),
			RequestCount:         h.RequestCount(),
			FailureCount:         h.FailureCount(),
			SecondsSinceActivity: h.SecondsSinceActivity(),
		})
	})

	app.Post("/query", func(c *fiber.Ctx) error {
		var req queryReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if req.Query == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query required"})
		}

		resp, err := client.RunText(req.Query)
		if err != nil {
			l.Warn("admin query failed", slog.String("query", req.Query), slog.Any("err", err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(queryResp{Success: resp.Success, Data: string(resp.Data), Count: resp.Count})
	})

	return app
}
