package clicfg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"replyflow/pkg/clicfg"
)

type settings struct {
	Name      string        `flag:"name"`
	Verbose   bool          `flag:"verbose"`
	Limit     int           `flag:"limit"`
	Threshold float64       `flag:"threshold"`
	Interval  time.Duration `flag:"interval"`
	Untagged  string
}

func parse(t *testing.T, args ...string) settings {
	t.Helper()

	var parsed settings

	command := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Value: "default"},
			&cli.BoolFlag{Name: "verbose"},
			&cli.IntFlag{Name: "limit", Value: 10},
			&cli.FloatFlag{Name: "threshold", Value: 0.8},
			&cli.DurationFlag{Name: "interval", Value: time.Minute},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			return clicfg.ParseFlags(c, &parsed)
		},
	}

	require.NoError(t, command.Run(t.Context(), append([]string{"test"}, args...)))
	return parsed
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		parsed := parse(t)
		require.Equal(t, settings{Name: "default", Limit: 10, Threshold: 0.8, Interval: time.Minute}, parsed)
	})

	t.Run("explicit values", func(t *testing.T) {
		t.Parallel()

		parsed := parse(t, "--name", "replyflow", "--verbose", "--limit", "3", "--threshold", "0.5", "--interval", "90s")
		require.Equal(t, settings{Name: "replyflow", Verbose: true, Limit: 3, Threshold: 0.5, Interval: 90 * time.Second}, parsed)
	})

	t.Run("rejects non pointers", func(t *testing.T) {
		t.Parallel()

		command := &cli.Command{
			Name: "test",
			Action: func(_ context.Context, c *cli.Command) error {
				return clicfg.ParseFlags(c, settings{})
			},
		}

		err := command.Run(t.Context(), []string{"test"})
		require.ErrorIs(t, err, clicfg.ErrCannotParseFlags)
	})
}
