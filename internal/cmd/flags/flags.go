package flags

import (
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	"replyflow/internal/approval"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// TODO: extract custom EnumFlag
var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var DatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Aliases: []string{"d"},
	Usage:   "Postgres connection string, in-memory storage is used when empty",
	Sources: cli.EnvVars("DATABASE_URL"),
}

var Migrate = &cli.BoolFlag{
	Name:    "migrate",
	Usage:   "Apply pending database migrations on start",
	Value:   false,
	Sources: cli.EnvVars("AUTO_MIGRATE"),
}

var NATSURL = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server, events are not published when empty",
	Sources: cli.EnvVars("NATS_URL"),
}

var InitNATS = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize the NATS server: create the event stream",
	DefaultText: "false",
	Value:       false,
	Sources:     cli.EnvVars("NATS_INIT"),
}

var APIAddr = &cli.StringFlag{
	Name:    "api-addr",
	Usage:   "Listen address of the operator API",
	Value:   ":8888",
	Sources: cli.EnvVars("API_ADDR"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Listen address of the metrics server",
	Value:   ":8080",
	Sources: cli.EnvVars("METRICS_ADDR"),
}

var FetchInterval = &cli.DurationFlag{
	Name:    "fetch-interval",
	Usage:   "How often the platforms are polled for new comments",
	Value:   300 * time.Second,
	Sources: cli.EnvVars("FETCH_INTERVAL"),
}

var SweepInterval = &cli.DurationFlag{
	Name:    "sweep-interval",
	Usage:   "How often pending replies are re-checked for auto approval",
	Value:   60 * time.Second,
	Sources: cli.EnvVars("SWEEP_INTERVAL"),
}

var RollupInterval = &cli.DurationFlag{
	Name:    "rollup-interval",
	Usage:   "How often hourly comment counts are recorded",
	Value:   300 * time.Second,
	Sources: cli.EnvVars("ROLLUP_INTERVAL"),
}

var PostsPerFetch = &cli.IntFlag{
	Name:    "posts-per-fetch",
	Usage:   "Number of recent posts fetched per platform",
	Value:   10,
	Sources: cli.EnvVars("POSTS_PER_FETCH"),
}

var MaxCommentsPerFetch = &cli.IntFlag{
	Name:    "max-comments-per-fetch",
	Usage:   "Maximum number of comments fetched per post",
	Value:   50,
	Sources: cli.EnvVars("MAX_COMMENTS_PER_FETCH"),
}

var AutoApproveThreshold = &cli.FloatFlag{
	Name:    "auto-approve-threshold",
	Usage:   "Minimum reply confidence for posting without a human",
	Value:   approval.DefaultThreshold,
	Sources: cli.EnvVars("AUTO_APPROVE_THRESHOLD"),
	Validator: func(value float64) error {
		if value < 0 || value > 1 {
			return fmt.Errorf("auto approve threshold must be within [0, 1], got %v", value)
		}
		return nil
	},
}

var OpenAIModel = &cli.StringFlag{
	Name:    "openai-model",
	Usage:   "Chat completion model",
	Value:   "gpt-4",
	Sources: cli.EnvVars("OPENAI_MODEL"),
}

var AITemperature = &cli.FloatFlag{
	Name:    "ai-temperature",
	Usage:   "Sampling temperature for reply generation",
	Value:   0.7,
	Sources: cli.EnvVars("AI_TEMPERATURE"),
}

var MaxReplyTokens = &cli.IntFlag{
	Name:    "max-reply-tokens",
	Usage:   "Token limit of a generated reply",
	Value:   200,
	Sources: cli.EnvVars("MAX_REPLY_TOKENS"),
}

// Scheduling are the flags of every command that runs the processing pipeline.
var Scheduling = []cli.Flag{
	FetchInterval,
	SweepInterval,
	RollupInterval,
	PostsPerFetch,
	MaxCommentsPerFetch,
	AutoApproveThreshold,
	OpenAIModel,
	AITemperature,
	MaxReplyTokens,
}
