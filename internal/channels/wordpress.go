package channels

import (
	"context"

	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dispatch"
)

// Blog publishes to the local WordPress blog. There is no vendor error-code
// table; blog failures classify through the generic rules only.
type Blog struct {
	transport Transport
}

func NewBlog(t Transport) *Blog {
	return &Blog{transport: t}
}

func (b *Blog) Channel() string { return config.ChannelWordPressBlog }

func (b *Blog) Publish(ctx context.Context, payload map[string]any) (*dispatch.Result, error) {
	title := stringField(payload, "title")
	content := stringField(payload, "content")
	if title == "" {
		return nil, terminalPublishError(config.ChannelWordPressBlog, "invalid request: blog post requires a title")
	}

	normalized := map[string]any{
		"title":   title,
		"content": content,
		"status":  "publish",
	}
	if cats, ok := payload["categories"]; ok {
		normalized["categories"] = cats
	}

	resp, err := b.transport.Do(ctx, "posts.create", normalized)
	if err != nil {
		return nil, wrapPublishError(config.ChannelWordPressBlog, err, nil)
	}

	return &dispatch.Result{RemoteID: stringField(resp, "id"), Normalized: normalized}, nil
}
