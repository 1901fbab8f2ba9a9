package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusError struct {
	msg    string
	status int
	code   string
}

func (e *statusError) Error() string     { return e.msg }
func (e *statusError) StatusCode() int   { return e.status }
func (e *statusError) ErrorCode() string { return e.code }

type typedError struct {
	msg       string
	retryable bool
}

func (e *typedError) Error() string     { return e.msg }
func (e *typedError) IsRetryable() bool { return e.retryable }

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "http 503 is retryable",
			err:  &statusError{msg: "HTTP 503 Service Unavailable", status: 503},
			want: true,
		},
		{
			name: "http 400 is terminal",
			err:  &statusError{msg: "HTTP 400 Bad Request", status: 400},
			want: false,
		},
		{
			name: "http 429 is retryable",
			err:  &statusError{msg: "HTTP 429 Too Many Requests", status: 429},
			want: true,
		},
		{
			name: "http 409 is retryable",
			err:  &statusError{msg: "HTTP 409 Conflict", status: 409},
			want: true,
		},
		{
			name: "unlisted 5xx defaults retryable",
			err:  &statusError{msg: "HTTP 507 Insufficient Storage", status: 507},
			want: true,
		},
		{
			name: "status takes precedence over vendor code",
			err:  &statusError{msg: "HTTP 400 rate limited", status: 400, code: "rate_limit_exceeded"},
			want: false,
		},
		{
			name: "deadlock message is retryable",
			err:  errors.New("SQLSTATE[40001]: Deadlock found when trying to get lock"),
			want: true,
		},
		{
			name: "lock wait timeout is retryable",
			err:  errors.New("Lock wait timeout exceeded; try restarting transaction"),
			want: true,
		},
		{
			name: "connection reset is retryable",
			err:  errors.New("read tcp: connection reset by peer"),
			want: true,
		},
		{
			name: "duplicate entry is terminal",
			err:  errors.New("Duplicate entry 'x' for key 'jobs.uniq'"),
			want: false,
		},
		{
			name: "permission denied is terminal",
			err:  errors.New("permission denied for this resource"),
			want: false,
		},
		{
			name: "unauthorized is terminal",
			err:  errors.New("401 Unauthorized"),
			want: false,
		},
		{
			name: "vendor transient code without status",
			err:  &statusError{msg: "request rejected", code: "quota_exceeded"},
			want: true,
		},
		{
			name: "unknown vendor code fails closed",
			err:  &statusError{msg: "request rejected", code: "spam_detected"},
			want: false,
		},
		{
			name: "unknown error fails closed",
			err:  errors.New("something inexplicable happened"),
			want: false,
		},
		{
			name: "typed retryable verdict is trusted",
			err:  &typedError{msg: "vendor says retry", retryable: true},
			want: true,
		},
		{
			name: "typed terminal verdict is trusted",
			err:  &typedError{msg: "deadlock found", retryable: false},
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetry(tt.err))
		})
	}
}

func TestEvaluate_VendorTable(t *testing.T) {
	vendor := map[string]bool{"rateLimitExceeded": true}

	assert.True(t, Evaluate(0, "rejected", "rateLimitExceeded", vendor))
	assert.False(t, Evaluate(0, "rejected", "policyViolation", vendor))
	// generic snake_case codes still apply under a vendor table
	assert.True(t, Evaluate(0, "rejected", "backend_error", vendor))
}
