package channels

import (
	"context"

	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dispatch"
)

// Graph API error codes that indicate a temporary condition. Anything else
// (OAuth failures, policy rejections) is terminal.
var metaRetryableCodes = map[string]bool{
	"1":   true, // unknown error, API advises retry
	"2":   true, // service temporarily unavailable
	"4":   true, // application request limit reached
	"17":  true, // user request limit reached
	"32":  true, // page request limit reached
	"613": true, // calls exceed rate
}

// Facebook publishes page posts through the Meta Graph API.
type Facebook struct {
	transport Transport
}

func NewFacebook(t Transport) *Facebook {
	return &Facebook{transport: t}
}

func (f *Facebook) Channel() string { return config.ChannelMetaFacebook }

func (f *Facebook) Publish(ctx context.Context, payload map[string]any) (*dispatch.Result, error) {
	message := stringField(payload, "message")
	link := stringField(payload, "link")
	if message == "" && link == "" {
		return nil, terminalPublishError(config.ChannelMetaFacebook, "invalid request: facebook post requires a message or link")
	}

	normalized := map[string]any{"published": true}
	if message != "" {
		normalized["message"] = message
	}
	if link != "" {
		normalized["link"] = link
	}

	resp, err := f.transport.Do(ctx, "feed", normalized)
	if err != nil {
		return nil, wrapPublishError(config.ChannelMetaFacebook, err, metaRetryableCodes)
	}

	return &dispatch.Result{RemoteID: stringField(resp, "id"), Normalized: normalized}, nil
}

// Instagram publishes media through the Meta Graph API container flow: a
// media container is created first, then published. Both calls run inside
// the same dispatch attempt.
type Instagram struct {
	transport Transport
}

func NewInstagram(t Transport) *Instagram {
	return &Instagram{transport: t}
}

func (i *Instagram) Channel() string { return config.ChannelMetaInstagram }

func (i *Instagram) Publish(ctx context.Context, payload map[string]any) (*dispatch.Result, error) {
	mediaURL := stringField(payload, "media_url")
	if mediaURL == "" {
		return nil, terminalPublishError(config.ChannelMetaInstagram, "invalid request: instagram post requires a media_url")
	}

	normalized := map[string]any{
		"image_url": mediaURL,
		"caption":   stringField(payload, "caption"),
	}

	container, err := i.transport.Do(ctx, "media", normalized)
	if err != nil {
		return nil, wrapPublishError(config.ChannelMetaInstagram, err, metaRetryableCodes)
	}

	resp, err := i.transport.Do(ctx, "media_publish", map[string]any{
		"creation_id": stringField(container, "id"),
	})
	if err != nil {
		return nil, wrapPublishError(config.ChannelMetaInstagram, err, metaRetryableCodes)
	}

	return &dispatch.Result{RemoteID: stringField(resp, "id"), Normalized: normalized}, nil
}
