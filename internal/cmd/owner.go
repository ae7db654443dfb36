package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"replyflow/internal/cmd/flags"
	"replyflow/internal/persistence/settings"
)

var ownerCmd = &cli.Command{
	Name:  "owner",
	Usage: "Read or switch the owner status, nothing is auto posted while the owner is active",
	Flags: []cli.Flag{
		flags.DatabaseURL,
	},
	Commands: []*cli.Command{
		{
			Name:  "on",
			Usage: "Mark the owner active",
			Action: func(ctx context.Context, c *cli.Command) error {
				return setOwner(ctx, c, true)
			},
		},
		{
			Name:  "off",
			Usage: "Mark the owner inactive",
			Action: func(ctx context.Context, c *cli.Command) error {
				return setOwner(ctx, c, false)
			},
		},
		{
			Name:  "status",
			Usage: "Print the owner status",
			Action: func(ctx context.Context, c *cli.Command) error {
				repo, shutdown, err := settingsRepository(ctx, c)
				if err != nil {
					return err
				}
				defer shutdown()

				active, err := repo.OwnerActive(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("owner active: %t\n", active)
				return nil
			},
		},
	},
}

func setOwner(ctx context.Context, c *cli.Command, active bool) error {
	repo, shutdown, err := settingsRepository(ctx, c)
	if err != nil {
		return err
	}
	defer shutdown()

	err = repo.SetOwnerActive(ctx, active)
	if err != nil {
		return err
	}

	fmt.Printf("owner active: %t\n", active)
	return nil
}

func settingsRepository(ctx context.Context, c *cli.Command) (*settings.Repository, func(), error) {
	db, err := openDB(c.String(flags.DatabaseURL.Name))
	if err != nil {
		return nil, nil, err
	}

	repo := &settings.Repository{Logger: slog.Default(), DB: db}
	err = repo.Init(ctx)
	if err != nil {
		db.Shutdown(ctx) //nolint:errcheck
		return nil, nil, err
	}

	return repo, func() { db.Shutdown(ctx) }, nil //nolint:errcheck
}
