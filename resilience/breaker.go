package resilience

import (
	"sync"
	"time"
)

// BreakerState is the circuit breaker's state machine position.
type BreakerState byte

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker tracks success/failure streaks and gates requests by
// state. A breaker may be shared across
// goroutines, so unlike the rest of this module it guards its own state
// with a mutex rather than relying on single-owner-thread discipline.
type CircuitBreaker struct {
	mu sync.Mutex

	state            BreakerState
	failureCount     int
	successCount     int
	lastStateChange  time.Time
	failureThreshold int
	successThreshold int
	timeout          time.Duration
	now              func() time.Time
}

// NewCircuitBreaker constructs a breaker in the closed state.
func NewCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		lastStateChange:  time.Now(),
		now:              time.Now,
	}
}

func (cb *CircuitBreaker) clock() time.Time {
	if cb.now != nil {
		return cb.now()
	}
	return time.Now()
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ShouldAllow reports whether a request may proceed, transitioning
// open -> half_open when the cooldown has elapsed.
func (cb *CircuitBreaker) ShouldAllow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if cb.clock().Sub(cb.lastStateChange) >= cb.timeout {
			cb.state = StateHalfOpen
			cb.failureCount = 0
			cb.successCount = 0
			cb.lastStateChange = cb.clock()
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess advances the breaker on a successful operation.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.lastStateChange = cb.clock()
		}
	case StateOpen:
		cb.failureCount = 0
	}
}

// RecordFailure advances the breaker on a failed operation.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.state = StateOpen
			cb.lastStateChange = cb.clock()
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.successCount = 0
		cb.lastStateChange = cb.clock()
	case StateOpen:
		cb.lastStateChange = cb.clock()
	}
}

// Reset returns the breaker unconditionally to closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
	cb.lastStateChange = cb.clock()
}
