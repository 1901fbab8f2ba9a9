package channels

import (
	"context"

	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dispatch"
)

// Google-style reason strings shared by the YouTube Data API and the
// Business Profile API.
var googleRetryableCodes = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
	"backendError":          true,
	"internalError":         true,
}

// YouTube publishes videos through the YouTube Data API.
type YouTube struct {
	transport Transport
}

func NewYouTube(t Transport) *YouTube {
	return &YouTube{transport: t}
}

func (y *YouTube) Channel() string { return config.ChannelYouTube }

func (y *YouTube) Publish(ctx context.Context, payload map[string]any) (*dispatch.Result, error) {
	title := stringField(payload, "title")
	if title == "" {
		return nil, terminalPublishError(config.ChannelYouTube, "invalid request: youtube upload requires a title")
	}

	normalized := map[string]any{
		"snippet": map[string]any{
			"title":       title,
			"description": stringField(payload, "description"),
		},
		"status": map[string]any{
			"privacyStatus": "public",
		},
	}
	if videoURL := stringField(payload, "video_url"); videoURL != "" {
		normalized["media_url"] = videoURL
	}

	resp, err := y.transport.Do(ctx, "videos.insert", normalized)
	if err != nil {
		return nil, wrapPublishError(config.ChannelYouTube, err, googleRetryableCodes)
	}

	return &dispatch.Result{RemoteID: stringField(resp, "id"), Normalized: normalized}, nil
}
