package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"replyflow/internal/ai"
	"replyflow/internal/api"
	"replyflow/internal/cmd/flags"
	"replyflow/internal/config"
	"replyflow/internal/core"
	"replyflow/internal/crm"
	"replyflow/internal/metrics"
	"replyflow/internal/nats"
	"replyflow/internal/notify"
	"replyflow/internal/persistence"
	"replyflow/internal/persistence/analytics"
	"replyflow/internal/persistence/comments"
	"replyflow/internal/persistence/crmactions"
	"replyflow/internal/persistence/memory"
	"replyflow/internal/persistence/posts"
	"replyflow/internal/persistence/replies"
	"replyflow/internal/persistence/settings"
	"replyflow/internal/platforms"
	"replyflow/internal/processing"
	"replyflow/internal/scheduling"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Poll the platforms, process comments and serve the operator API",
	Flags: append([]cli.Flag{
		flags.DatabaseURL,
		flags.Migrate,
		flags.NATSURL,
		flags.InitNATS,
		flags.APIAddr,
		flags.MetricsAddr,
	}, flags.Scheduling...),
	Action: func(ctx context.Context, c *cli.Command) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		if cfg.DatabaseURL != "" && cfg.AutoMigrate {
			err = migrate(ctx, cfg.DatabaseURL, core.Migrator.Up)
			if err != nil {
				return err
			}
		}

		services := storage(cfg)
		services = append(services,
			pal.Provide[core.AdapterSource](&platforms.Registry{}),
			pal.Provide[core.AIEngine](&ai.Engine{}),
			pal.Provide[core.CRM](&crm.GHL{}),
			pal.Provide[core.CommentProcessor](&processing.Processor{}),

			pal.Provide[core.Notifier](&notify.Hub{}),
			pal.Provide(&notify.LogObserver{}),
			pal.Provide(&notify.Broadcaster{}),

			pal.Provide[core.ReplyPoster](&scheduling.Poster{}),
			pal.Provide(&scheduling.Scheduler{}),

			pal.Provide(&api.Backend{}),
			pal.Provide(&api.Server{}),

			pal.Provide(&metrics.Collector{}),
			pal.Provide(&metrics.HTTPServer{}),
		)

		if cfg.NATSURL != "" {
			services = append(services, nats.Provide())
		}

		return run(ctx, cfg, services...)
	},
}

// storage provides the repositories: postgres when a database is configured, in-memory
// otherwise.
func storage(cfg *config.Config) []pal.ServiceDef {
	if cfg.DatabaseURL == "" {
		store := memory.New()

		return []pal.ServiceDef{
			pal.Provide[core.PostRepository](store.Posts()),
			pal.Provide[core.CommentRepository](store.Comments()),
			pal.Provide[core.ReplyRepository](store.Replies()),
			pal.Provide[core.SettingsRepository](store.Settings()),
			pal.Provide[core.AnalyticsRepository](store.Analytics()),
			pal.Provide[core.CRMActionRepository](store.CRMActions()),
		}
	}

	return []pal.ServiceDef{
		pal.Provide[core.DB](&persistence.DB{}),
		pal.Provide[core.PostRepository](&posts.Repository{}),
		pal.Provide[core.CommentRepository](&comments.Repository{}),
		pal.Provide[core.ReplyRepository](&replies.Repository{}),
		pal.Provide[core.SettingsRepository](&settings.Repository{}),
		pal.Provide[core.AnalyticsRepository](&analytics.Repository{}),
		pal.Provide[core.CRMActionRepository](&crmactions.Repository{}),
	}
}
