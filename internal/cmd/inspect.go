package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"

	"replyflow/internal/cmd/flags"
	"replyflow/internal/core"
	"replyflow/internal/platforms"
)

var inspectCmd = &cli.Command{
	Name:      "inspect",
	Usage:     "Fetch recent posts and the comments of the latest one from a platform",
	ArgsUsage: "<platform>",
	Flags: []cli.Flag{
		flags.PostsPerFetch,
		flags.MaxCommentsPerFetch,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		platform := core.Platform(c.Args().First())
		if !slices.Contains(core.Platforms, platform) {
			return fmt.Errorf("unknown platform %q, expected one of %v", platform, core.Platforms)
		}

		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		registry := &platforms.Registry{Logger: slog.Default(), Config: cfg}
		err = registry.Init(ctx)
		if err != nil {
			return err
		}
		defer registry.Shutdown(ctx) //nolint:errcheck

		adapter, ok := registry.Adapter(platform)
		if !ok {
			return fmt.Errorf("%s is not configured, check its credentials", platform)
		}

		posts := adapter.ListRecentPosts(ctx, cfg.PostsPerFetch)
		pp.Println(posts) //nolint:errcheck

		if len(posts) == 0 {
			return nil
		}

		pp.Println(adapter.ListComments(ctx, posts[0].ExternalID)) //nolint:errcheck
		return nil
	},
}
