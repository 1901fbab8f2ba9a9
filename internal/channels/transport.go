// Package channels contains the per-channel publishers: payload
// normalization, the external API exchange, and vendor-specific failure
// classification. The HTTP client mechanics and credential handling live
// behind the Transport interface and are supplied by the embedding
// application.
package channels

import "context"

// Transport performs one authenticated exchange with an external API. The
// op names the API operation (e.g. "feed", "videos.insert"); body is the
// normalized payload. Implementations own timeouts and token refresh.
type Transport interface {
	Do(ctx context.Context, op string, body map[string]any) (map[string]any, error)
}

// HTTPError is the raw transport failure shape: an HTTP-like status, the
// response message, and an optional vendor error code. It feeds the generic
// classifier when a publisher did not wrap it into a typed PublishError.
type HTTPError struct {
	Status  int
	Message string
	Code    string
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) StatusCode() int { return e.Status }

func (e *HTTPError) ErrorCode() string { return e.Code }
