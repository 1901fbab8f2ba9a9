package dto

// Per-channel payload shapes, validated at enqueue time so malformed posts
// fail at the producer instead of burning retries. The preview flag rides on
// every payload and is evaluated by the dispatcher, not the publishers.

type BlogPostPayload struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type FacebookPostPayload struct {
	Message string `json:"message" validate:"required_without=Link"`
	Link    string `json:"link" validate:"omitempty,url"`
}

type InstagramPostPayload struct {
	Caption  string `json:"caption"`
	MediaURL string `json:"media_url" validate:"required,url"`
}

type TikTokPostPayload struct {
	Caption  string `json:"caption"`
	VideoURL string `json:"video_url" validate:"required,url"`
}

type YouTubePostPayload struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
}

type GoogleBusinessPostPayload struct {
	Summary         string `json:"summary" validate:"required"`
	CallToActionURL string `json:"call_to_action_url" validate:"omitempty,url"`
}
