// Package shinyerr defines the closed set of errors the ShinyDB client can
// return. Errors are sentinel values, never panics; callers compare with
// errors.Is or use IsRetryable/IsTimeout to drive resilience decisions.
package shinyerr

import "errors"

var (
	// Transport
	ErrConnectionFailed = errors.New("shinydb: connection failed")
	ErrConnectionReset  = errors.New("shinydb: connection reset")
	ErrConnectionRefused = errors.New("shinydb: connection refused")
	ErrNetworkError     = errors.New("shinydb: network error")

	// Timeout
	ErrTimeout      = errors.New("shinydb: operation timeout")
	ErrReadTimeout  = errors.New("shinydb: read timeout")
	ErrWriteTimeout = errors.New("shinydb: write timeout")

	// Protocol
	ErrInvalidResponse = errors.New("shinydb: invalid response")
	ErrInvalidRequest  = errors.New("shinydb: invalid request")
	ErrProtocolError   = errors.New("shinydb: protocol error")

	// Backpressure
	ErrPipelineFull   = errors.New("shinydb: pipeline full")
	ErrBufferOverflow = errors.New("shinydb: buffer overflow")

	// Service
	ErrServerError        = errors.New("shinydb: server error")
	ErrServiceUnavailable = errors.New("shinydb: service unavailable")
	ErrNotFound           = errors.New("shinydb: not found")
	ErrPermissionDenied   = errors.New("shinydb: permission denied")

	// Operation-specific
	ErrOperationFailed  = errors.New("shinydb: operation failed")
	ErrDocumentNotFound = errors.New("shinydb: document not found")
	ErrUpdateFailed     = errors.New("shinydb: update failed")
	ErrDeleteFailed     = errors.New("shinydb: delete failed")
	ErrQueryFailed      = errors.New("shinydb: query failed")
	ErrAggregateFailed  = errors.New("shinydb: aggregate failed")
	ErrScanFailed       = errors.New("shinydb: scan failed")
	ErrNoOperation      = errors.New("shinydb: no operation specified")
	ErrNoSpaceSpecified = errors.New("shinydb: no space specified")
)

// retryable is the closed set of errors the resilient wrapper will retry
// with backoff.
var retryable = map[error]bool{
	ErrConnectionFailed:   true,
	ErrConnectionReset:    true,
	ErrConnectionRefused:  true,
	ErrNetworkError:       true,
	ErrTimeout:            true,
	ErrReadTimeout:        true,
	ErrWriteTimeout:       true,
	ErrPipelineFull:       true,
	ErrBufferOverflow:     true,
	ErrServerError:        true,
	ErrServiceUnavailable: true,
}

// reconnectTriggers is the subset of retryable errors that indicate loss of
// connectivity and should force a reconnect before the next retry attempt.
var reconnectTriggers = map[error]bool{
	ErrConnectionFailed:  true,
	ErrConnectionReset:   true,
	ErrConnectionRefused: true,
	ErrNetworkError:      true,
}

var timeouts = map[error]bool{
	ErrTimeout:      true,
	ErrReadTimeout:  true,
	ErrWriteTimeout: true,
}

// IsRetryable reports whether err is eligible for backoff retry.
func IsRetryable(err error) bool {
	for sentinel, ok := range retryable {
		if ok && errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsTimeout reports whether err is one of the timeout variants.
func IsTimeout(err error) bool {
	for sentinel, ok := range timeouts {
		if ok && errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// NeedsReconnect reports whether err indicates the connection itself is
// gone and a reconnect should be attempted before the next retry.
func NeedsReconnect(err error) bool {
	for sentinel, ok := range reconnectTriggers {
		if ok && errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
