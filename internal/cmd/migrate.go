package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/urfave/cli/v3"

	"replyflow/internal/cmd/flags"
	"replyflow/internal/core"
	"replyflow/internal/persistence"
)

var ErrDatabaseRequired = errors.New("a database url is required")

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Manage the database schema",
	Flags: []cli.Flag{
		flags.DatabaseURL,
	},
	Commands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply all pending migrations",
			Action: func(ctx context.Context, c *cli.Command) error {
				return migrate(ctx, c.String(flags.DatabaseURL.Name), core.Migrator.Up)
			},
		},
		{
			Name:  "down",
			Usage: "Roll back the latest migration",
			Action: func(ctx context.Context, c *cli.Command) error {
				return migrate(ctx, c.String(flags.DatabaseURL.Name), core.Migrator.Down)
			},
		},
	},
}

func migrate(ctx context.Context, dsn string, step func(core.Migrator, context.Context) error) error {
	db, err := openDB(dsn)
	if err != nil {
		return err
	}
	defer db.Shutdown(ctx) //nolint:errcheck

	migrator := &persistence.Migrator{Logger: slog.Default(), DB: db}
	err = migrator.Init(ctx)
	if err != nil {
		return err
	}

	return step(migrator, ctx)
}

func openDB(dsn string) (*persistence.DB, error) {
	if dsn == "" {
		return nil, ErrDatabaseRequired
	}
	return persistence.Open(dsn)
}
