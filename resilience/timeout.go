// Package resilience implements the timeout budgets, retry policy, and
// circuit breaker. These are plain configuration and state types; the
// policy decisions (is this retryable, what's the backoff) live here but
// the loop that applies them lives in the client package, matching
// broker.go's separation of backoff constants from the loop that uses them.
package resilience

import "time"

// TimeoutConfig is a record of optional millisecond budgets. A zero value
// (nil pointer) for any budget disables the corresponding deadline check.
type TimeoutConfig struct {
	Connect   *time.Duration
	Read      *time.Duration
	Write     *time.Duration
	Operation *time.Duration
}

func ms(n int64) *time.Duration {
	d := time.Duration(n) * time.Millisecond
	return &d
}

// DefaultTimeouts is the "default" preset: 5000/30000/10000/60000 ms.
func DefaultTimeouts() TimeoutConfig {
	return TimeoutConfig{
		Connect:   ms(5000),
		Read:      ms(30000),
		Write:     ms(10000),
		Operation: ms(60000),
	}
}

// FastTimeouts is the "fast" preset: 1000/5000/2000/10000 ms.
func FastTimeouts() TimeoutConfig {
	return TimeoutConfig{
		Connect:   ms(1000),
		Read:      ms(5000),
		Write:     ms(2000),
		Operation: ms(10000),
	}
}

// NoTimeouts disables every deadline check.
func NoTimeouts() TimeoutConfig {
	return TimeoutConfig{}
}
