package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel string `flag:"log-level"`

	DatabaseURL string `flag:"database-url"`
	AutoMigrate bool   `flag:"migrate"`

	NATSURL  string `flag:"nats-url"`
	NATSInit bool   `flag:"nats-init"`

	APIAddr     string `flag:"api-addr"`
	MetricsAddr string `flag:"metrics-addr"`

	FetchInterval        time.Duration `flag:"fetch-interval"`
	SweepInterval        time.Duration `flag:"sweep-interval"`
	RollupInterval       time.Duration `flag:"rollup-interval"`
	PostsPerFetch        int           `flag:"posts-per-fetch"`
	MaxCommentsPerFetch  int           `flag:"max-comments-per-fetch"`
	AutoApproveThreshold float64       `flag:"auto-approve-threshold"`

	OpenAIModel    string  `flag:"openai-model"`
	AITemperature  float64 `flag:"ai-temperature"`
	MaxReplyTokens int     `flag:"max-reply-tokens"`

	Credentials Credentials
}

// Credentials are secrets read from the environment only.
type Credentials struct {
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`

	YouTubeAPIKey     string `envconfig:"YOUTUBE_API_KEY"`
	YouTubeChannelID  string `envconfig:"YOUTUBE_CHANNEL_ID"`
	YouTubeOAuthToken string `envconfig:"YOUTUBE_OAUTH_TOKEN"`

	FacebookAccessToken string `envconfig:"FACEBOOK_ACCESS_TOKEN"`
	FacebookPageID      string `envconfig:"FACEBOOK_PAGE_ID"`

	InstagramAccessToken       string `envconfig:"INSTAGRAM_ACCESS_TOKEN"`
	InstagramBusinessAccountID string `envconfig:"INSTAGRAM_BUSINESS_ACCOUNT_ID"`

	LinkedInAccessToken string `envconfig:"LINKEDIN_ACCESS_TOKEN"`

	TwitterBearerToken string `envconfig:"TWITTER_BEARER_TOKEN"`
	TwitterUsername    string `envconfig:"TWITTER_USERNAME"`

	GHLAPIKey     string `envconfig:"GHL_API_KEY"`
	GHLLocationID string `envconfig:"GHL_LOCATION_ID"`
	GHLBaseURL    string `envconfig:"GHL_BASE_URL" default:"https://api.gohighlevel.com/v1"`
}

func (c *Config) LoadCredentials() error {
	return envconfig.Process("", &c.Credentials)
}
