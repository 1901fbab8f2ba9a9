package channels

import (
	"errors"

	"github.com/omnipress/publishq/internal/classify"
)

// PublishError is the typed failure every publisher raises. The retryable
// verdict is computed once at construction from the channel's vendor
// error-code table layered over the generic classification rules, so the
// dispatcher can trust IsRetryable without re-deriving it per channel.
type PublishError struct {
	Channel   string
	Message   string
	Status    int
	Code      string
	retryable bool
}

// Error returns the raw failure message verbatim; it is what gets stored on
// the job row.
func (e *PublishError) Error() string { return e.Message }

func (e *PublishError) IsRetryable() bool { return e.retryable }

func (e *PublishError) StatusCode() int { return e.Status }

func (e *PublishError) ErrorCode() string { return e.Code }

// wrapPublishError lifts a transport failure into the channel's typed error.
// Status and vendor code are recovered from the cause when it carries them.
func wrapPublishError(channel string, cause error, vendorRetryable map[string]bool) *PublishError {
	status := 0
	var sc classify.StatusCoder
	if errors.As(cause, &sc) {
		status = sc.StatusCode()
	}

	code := ""
	var c classify.Coder
	if errors.As(cause, &c) {
		code = c.ErrorCode()
	}

	return &PublishError{
		Channel:   channel,
		Message:   cause.Error(),
		Status:    status,
		Code:      code,
		retryable: classify.Evaluate(status, cause.Error(), code, vendorRetryable),
	}
}

// terminalPublishError builds a non-retryable error for payloads the channel
// cannot send (missing required fields and the like).
func terminalPublishError(channel, message string) *PublishError {
	return &PublishError{Channel: channel, Message: message}
}
