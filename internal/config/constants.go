package config

type JobStatus string

var (
	AllowedChannels = []string{
		ChannelWordPressBlog,
		ChannelMetaFacebook,
		ChannelMetaInstagram,
		ChannelTikTok,
		ChannelYouTube,
		ChannelGoogleBusiness,
	}

	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

const (
	ChannelWordPressBlog  = "wordpress_blog"
	ChannelMetaFacebook   = "meta_facebook"
	ChannelMetaInstagram  = "meta_instagram"
	ChannelTikTok         = "tiktok"
	ChannelYouTube        = "youtube"
	ChannelGoogleBusiness = "google_business"
)
