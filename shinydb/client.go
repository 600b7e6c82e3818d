// Package shinydb is the root of the ShinyDB client: Client composes
// transport, retry, and circuit-breaker policy into do_operation,
// and Query is the fluent builder that targets it.
package shinydb

import (
	"log/slog"
	"time"

	"github.com/shinydb/shinydb-go/internal/health"
	"github.com/shinydb/shinydb-go/resilience"
	"github.com/shinydb/shinydb-go/shinyerr"
	"github.com/shinydb/shinydb-go/transport"
	"github.com/shinydb/shinydb-go/wire"
)

// Client is a single-owner-per-connection resilient client: all
// of send_async/receive_async/do_operation on one Client must be serialized
// by the caller. Only the embedded CircuitBreaker is safe to share across
// goroutines.
type Client struct {
	host string
	port int

	transport *transport.Transport
	retry     resilience.RetryPolicy
	timeouts  resilience.TimeoutConfig
	breaker   *resilience.CircuitBreaker
	health    *health.Monitor

	logger *slog.Logger
}

// New constructs a Client for host:port with default retry policy,
// timeouts, and circuit breaker. It does not connect.
func New(host string, port int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		host:      host,
		port:      port,
		transport: transport.New(host, port),
		retry:     resilience.DefaultRetryPolicy(),
		timeouts:  resilience.DefaultTimeouts(),
		breaker:   resilience.NewCircuitBreaker(5, 2, 30*time.Second),
		health:    health.NewMonitor(0),
		logger:    logger,
	}
}

// Health returns the client's activity monitor.
func (c *Client) Health() *health.Monitor { return c.health }

// RetryPolicy returns the client's current retry policy.
func (c *Client) RetryPolicy() resilience.RetryPolicy { return c.retry }

// SetRetryPolicy replaces the client's retry policy.
func (c *Client) SetRetryPolicy(p resilience.RetryPolicy) { c.retry = p }

// TimeoutConfig returns the client's current timeout budgets.
func (c *Client) TimeoutConfig() resilience.TimeoutConfig { return c.timeouts }

// SetTimeoutConfig replaces the client's timeout budgets.
func (c *Client) SetTimeoutConfig(t resilience.TimeoutConfig) { c.timeouts = t }

// CircuitBreaker returns the client's circuit breaker.
func (c *Client) CircuitBreaker() *resilience.CircuitBreaker { return c.breaker }

// SetCircuitBreaker replaces the client's circuit breaker.
func (c *Client) SetCircuitBreaker(b *resilience.CircuitBreaker) { c.breaker = b }

// Connect dials the server, bounded by the connect timeout budget.
func (c *Client) Connect() error {
	timeout := durOrZero(c.timeouts.Connect)
	c.logger.Debug("connecting", slog.String("host", c.host), slog.Int("port", c.port))
	if err := c.transport.Connect(timeout); err != nil {
		c.logger.Warn("connect failed", slog.Any("err", err))
		return err
	}
	return nil
}

// Disconnect tears down the connection.
func (c *Client) Disconnect() error {
	return c.transport.Disconnect()
}

// IsConnected reports whether the client currently owns a live connection.
func (c *Client) IsConnected() bool {
	return c.transport.Connected()
}

// Reconnect tears down any existing socket, clears pending state, and
// performs a fresh connect to the last known (host, port).
func (c *Client) Reconnect() error {
	c.logger.Debug("reconnecting", slog.String("host", c.host), slog.Int("port", c.port))
	_ = c.transport.Disconnect()
	return c.Connect()
}

// SendAsync writes op to the wire and returns its correlation id without
// waiting for a reply.
func (c *Client) SendAsync(op wire.Operation) (uint64, error) {
	return c.transport.SendAsync(op, durOrZero(c.timeouts.Write))
}

// ReceiveAsync blocks for the next reply packet.
func (c *Client) ReceiveAsync() (*wire.Packet, error) {
	return c.transport.ReceiveAsync(durOrZero(c.timeouts.Read))
}

// doOperationOnce is one un-retried send+receive cycle with the per-step
// deadline budget: an operation-level wall-clock
// deadline, if configured, overrides the write/read presets and is
// recomputed by subtracting elapsed time after each step.
func (c *Client) doOperationOnce(op wire.Operation) (*wire.Packet, error) {
	start := time.Now()
	hasDeadline := c.timeouts.Operation != nil
	var deadline time.Time
	if hasDeadline {
		deadline = start.Add(*c.timeouts.Operation)
	}

	budget := func(preset *time.Duration) (time.Duration, error) {
		if !hasDeadline {
			return durOrZero(preset), nil
		}
		left := time.Until(deadline)
		if left <= 0 {
			return 0, shinyerr.ErrTimeout
		}
		return left, nil
	}

	writeTimeout, err := budget(c.timeouts.Write)
	if err != nil {
		return nil, err
	}
	if _, err := c.transport.SendAsync(op, writeTimeout); err != nil {
		return nil, err
	}

	readTimeout, err := budget(c.timeouts.Read)
	if err != nil {
		return nil, err
	}
	return c.transport.ReceiveAsync(readTimeout)
}

// DoOperation runs op through the resilient wrapper: circuit breaker gate,
// retry with backoff, and reconnect-on-connectivity-loss.
func (c *Client) DoOperation(op wire.Operation) (*wire.Packet, error) {
	return c.withRetry(func() (*wire.Packet, error) {
		return c.doOperationOnce(op)
	})
}

// withRetry is the gate-then-retry-then-reconnect loop every operation runs through.
func (c *Client) withRetry(opFn func() (*wire.Packet, error)) (*wire.Packet, error) {
	if !c.breaker.ShouldAllow() {
		c.logger.Warn("circuit breaker open, rejecting operation")
		c.health.RecordFailure()
		return nil, shinyerr.ErrServiceUnavailable
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		pkt, err := opFn()
		if err == nil {
			c.breaker.RecordSuccess()
			c.health.RecordSuccess()
			return pkt, nil
		}

		lastErr = err
		c.breaker.RecordFailure()

		if !shinyerr.IsRetryable(err) {
			c.health.RecordFailure()
			return nil, err
		}
		if attempt == c.retry.MaxAttempts-1 {
			c.health.RecordFailure()
			return nil, err
		}

		c.logger.Debug("retrying after error",
			slog.Any("err", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", c.retry.Backoff(attempt+1)))
		time.Sleep(c.retry.Backoff(attempt + 1))

		if shinyerr.NeedsReconnect(err) {
			if rerr := c.Reconnect(); rerr != nil {
				lastErr = rerr
			}
		}
	}

	if lastErr == nil {
		lastErr = shinyerr.ErrTimeout
	}
	return nil, lastErr
}

func durOrZero(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return *d
}
