package channels

import (
	"context"

	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dispatch"
)

// GoogleBusiness publishes local posts to a Google Business Profile.
type GoogleBusiness struct {
	transport Transport
}

func NewGoogleBusiness(t Transport) *GoogleBusiness {
	return &GoogleBusiness{transport: t}
}

func (g *GoogleBusiness) Channel() string { return config.ChannelGoogleBusiness }

func (g *GoogleBusiness) Publish(ctx context.Context, payload map[string]any) (*dispatch.Result, error) {
	summary := stringField(payload, "summary")
	if summary == "" {
		return nil, terminalPublishError(config.ChannelGoogleBusiness, "invalid request: business post requires a summary")
	}

	normalized := map[string]any{
		"summary":      summary,
		"languageCode": "en",
		"topicType":    "STANDARD",
	}
	if cta := stringField(payload, "call_to_action_url"); cta != "" {
		normalized["callToAction"] = map[string]any{
			"actionType": "LEARN_MORE",
			"url":        cta,
		}
	}

	resp, err := g.transport.Do(ctx, "localPosts.create", normalized)
	if err != nil {
		return nil, wrapPublishError(config.ChannelGoogleBusiness, err, googleRetryableCodes)
	}

	return &dispatch.Result{RemoteID: stringField(resp, "name"), Normalized: normalized}, nil
}
