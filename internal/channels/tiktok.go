package channels

import (
	"context"

	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dispatch"
)

var tiktokRetryableCodes = map[string]bool{
	"rate_limit_exceeded": true,
	"internal_error":      true,
	"system_error":        true,
	"server_busy":         true,
}

// TikTok publishes videos through the Content Posting API.
type TikTok struct {
	transport Transport
}

func NewTikTok(t Transport) *TikTok {
	return &TikTok{transport: t}
}

func (t *TikTok) Channel() string { return config.ChannelTikTok }

func (t *TikTok) Publish(ctx context.Context, payload map[string]any) (*dispatch.Result, error) {
	videoURL := stringField(payload, "video_url")
	if videoURL == "" {
		return nil, terminalPublishError(config.ChannelTikTok, "invalid request: tiktok post requires a video_url")
	}

	normalized := map[string]any{
		"video_url":    videoURL,
		"title":        stringField(payload, "caption"),
		"privacy_level": "PUBLIC_TO_EVERYONE",
	}

	resp, err := t.transport.Do(ctx, "video.publish", normalized)
	if err != nil {
		return nil, wrapPublishError(config.ChannelTikTok, err, tiktokRetryableCodes)
	}

	return &dispatch.Result{RemoteID: stringField(resp, "publish_id"), Normalized: normalized}, nil
}
