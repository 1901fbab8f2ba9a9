package channels

import (
	"context"
	"fmt"
	"time"

	"github.com/omnipress/publishq/internal/dispatch"
	"github.com/sethvargo/go-envconfig"
)

// TransportConfig carries the API endpoints and tokens the default REST
// transports are built from. The credential provider proper lives outside
// the queue; these are just the handles it left behind.
type TransportConfig struct {
	WordPressBaseURL      string `env:"WORDPRESS_API_BASE,default=http://localhost/wp-json/wp/v2"`
	WordPressToken        string `env:"WORDPRESS_API_TOKEN"`
	MetaBaseURL           string `env:"META_API_BASE,default=https://graph.facebook.com/v19.0"`
	MetaToken             string `env:"META_API_TOKEN"`
	TikTokBaseURL         string `env:"TIKTOK_API_BASE,default=https://open.tiktokapis.com/v2"`
	TikTokToken           string `env:"TIKTOK_API_TOKEN"`
	YouTubeBaseURL        string `env:"YOUTUBE_API_BASE,default=https://www.googleapis.com/youtube/v3"`
	YouTubeToken          string `env:"YOUTUBE_API_TOKEN"`
	GoogleBusinessBaseURL string `env:"GOOGLE_BUSINESS_API_BASE,default=https://mybusiness.googleapis.com/v4"`
	GoogleBusinessToken   string `env:"GOOGLE_BUSINESS_API_TOKEN"`

	HTTPTimeout time.Duration `env:"PUBLISH_HTTP_TIMEOUT,default=30s"`
}

func LoadTransportConfigFromEnv(ctx context.Context) (*TransportConfig, error) {
	var cfg TransportConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}

// DefaultPublishers builds the full publisher set over REST transports, one
// per supported channel.
func DefaultPublishers(cfg *TransportConfig) []dispatch.Publisher {
	return []dispatch.Publisher{
		NewBlog(NewRESTTransport(cfg.WordPressBaseURL, cfg.WordPressToken, cfg.HTTPTimeout)),
		NewFacebook(NewRESTTransport(cfg.MetaBaseURL, cfg.MetaToken, cfg.HTTPTimeout)),
		NewInstagram(NewRESTTransport(cfg.MetaBaseURL, cfg.MetaToken, cfg.HTTPTimeout)),
		NewTikTok(NewRESTTransport(cfg.TikTokBaseURL, cfg.TikTokToken, cfg.HTTPTimeout)),
		NewYouTube(NewRESTTransport(cfg.YouTubeBaseURL, cfg.YouTubeToken, cfg.HTTPTimeout)),
		NewGoogleBusiness(NewRESTTransport(cfg.GoogleBusinessBaseURL, cfg.GoogleBusinessToken, cfg.HTTPTimeout)),
	}
}
