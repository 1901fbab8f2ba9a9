// Package classify decides whether a failed publish attempt is worth
// retrying. Unknown errors are treated as terminal so a broken payload can
// never cause an infinite retry storm.
package classify

import (
	"errors"
	"strings"
)

// Retryable is implemented by typed channel errors that carry their own
// verdict (computed from the vendor's error-code table at construction).
type Retryable interface {
	IsRetryable() bool
}

// StatusCoder is implemented by errors that carry an HTTP-like status code.
type StatusCoder interface {
	StatusCode() int
}

// Coder is implemented by errors that carry a vendor error code or reason.
type Coder interface {
	ErrorCode() string
}

var retryableStatuses = map[int]bool{
	408: true, // request timeout
	409: true, // conflict, usually transient contention
	423: true, // locked
	425: true, // too early
	429: true, // rate limited
	500: true,
	502: true,
	503: true,
	504: true,
}

var transientPatterns = []string{
	"deadlock",
	"lock wait timeout",
	"timed out",
	"timeout",
	"connection reset",
	"service unavailable",
	"temporarily unavailable",
}

var terminalPatterns = []string{
	"duplicate entry",
	"invalid request",
	"permission denied",
	"unauthorized",
	"forbidden",
}

// TransientCodes are vendor-agnostic error codes treated as retryable on
// every channel. Channel publishers merge their own vendor tables on top.
var TransientCodes = map[string]bool{
	"rate_limit_exceeded": true,
	"quota_exceeded":      true,
	"backend_error":       true,
	"internal_error":      true,
	"resource_exhausted":  true,
	"aborted":             true,
	"unavailable":         true,
	"service_unavailable": true,
}

// ShouldRetry is the generic classification path, used when a channel throws
// a raw transport error rather than its typed exception. Typed errors that
// implement Retryable are trusted as-is so every channel behaves uniformly.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var r Retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	status := 0
	var sc StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	code := ""
	var c Coder
	if errors.As(err, &c) {
		code = c.ErrorCode()
	}

	return Evaluate(status, err.Error(), code, nil)
}

// Evaluate applies the classification rules in priority order: status code,
// transient message patterns, terminal message patterns, vendor error code,
// then a fail-closed default.
func Evaluate(status int, message, code string, vendorRetryable map[string]bool) bool {
	if status > 0 {
		if retryableStatuses[status] {
			return true
		}
		if status >= 400 && status < 500 {
			return false
		}
		if status >= 500 {
			return true
		}
	}

	msg := strings.ToLower(message)
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	for _, p := range terminalPatterns {
		if strings.Contains(msg, p) {
			return false
		}
	}

	if code != "" {
		if vendorRetryable[code] {
			return true
		}
		if TransientCodes[strings.ToLower(code)] {
			return true
		}
	}

	return false
}
