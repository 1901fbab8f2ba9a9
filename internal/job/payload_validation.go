package job

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/omnipress/publishq/common"
	"github.com/omnipress/publishq/internal/config"
	"github.com/omnipress/publishq/internal/dto"
	"github.com/omnipress/publishq/middleware"
)

var validate = validator.New()

func validatePayload[T any](raw json.RawMessage) error {
	var payload T

	if err := json.Unmarshal(raw, &payload); err != nil {
		return common.APIError{
			Status:  http.StatusBadRequest,
			Message: "invalid payload format",
		}
	}

	if err := validate.Struct(payload); err != nil {
		return common.APIError{
			Status:  http.StatusBadRequest,
			Message: "payload validation failed",
			Fields:  middleware.FormatValidationErrors(err),
		}
	}

	return nil
}

// validateChannelPayload dispatches to the channel's payload shape. Preview
// payloads skip field validation: a dry run never reaches the external
// service, so partial drafts are allowed through.
func validateChannelPayload(channel string, raw json.RawMessage) error {
	var probe struct {
		Preview bool `json:"preview"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Preview {
		return nil
	}

	switch channel {
	case config.ChannelWordPressBlog:
		return validatePayload[dto.BlogPostPayload](raw)
	case config.ChannelMetaFacebook:
		return validatePayload[dto.FacebookPostPayload](raw)
	case config.ChannelMetaInstagram:
		return validatePayload[dto.InstagramPostPayload](raw)
	case config.ChannelTikTok:
		return validatePayload[dto.TikTokPostPayload](raw)
	case config.ChannelYouTube:
		return validatePayload[dto.YouTubePostPayload](raw)
	case config.ChannelGoogleBusiness:
		return validatePayload[dto.GoogleBusinessPostPayload](raw)
	}

	return nil
}
