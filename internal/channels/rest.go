package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RESTTransport is the default Transport: one JSON POST per operation
// against a channel's API base URL. Real deployments swap in richer clients
// (upload sessions, token refresh); the queue only needs the Do contract.
type RESTTransport struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewRESTTransport(baseURL, token string, timeout time.Duration) *RESTTransport {
	return &RESTTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (t *RESTTransport) Do(ctx context.Context, op string, body map[string]any) (map[string]any, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	url := t.BaseURL + "/" + strings.TrimLeft(op, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp.StatusCode, raw)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return decoded, nil
}

// newHTTPError extracts message and vendor code from common API error body
// shapes; the raw body is the message of last resort.
func newHTTPError(status int, body []byte) *HTTPError {
	httpErr := &HTTPError{
		Status:  status,
		Message: fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(body))),
	}

	var envelope struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Reason  string `json:"reason"`
		Error   struct {
			Message string `json:"message"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return httpErr
	}

	switch {
	case envelope.Error.Message != "":
		httpErr.Message = fmt.Sprintf("HTTP %d: %s", status, envelope.Error.Message)
	case envelope.Message != "":
		httpErr.Message = fmt.Sprintf("HTTP %d: %s", status, envelope.Message)
	}

	switch {
	case envelope.Code != "":
		httpErr.Code = envelope.Code
	case envelope.Reason != "":
		httpErr.Code = envelope.Reason
	case envelope.Error.Code != nil:
		httpErr.Code = fmt.Sprintf("%v", envelope.Error.Code)
	}

	return httpErr
}
