package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
	"github.com/mattn/go-isatty"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
	}
}

// NewLogger builds the process logger. Terminals get devslog output, everything else gets
// JSON lines tagged with the application name and version so shipped logs can be told apart.
func NewLogger(w io.Writer, level string, terminal bool) (*slog.Logger, error) {
	parsedLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level: parsedLevel,
	}

	if terminal {
		return slog.New(devslog.NewHandler(w, &devslog.Options{
			HandlerOptions:  opts,
			NewLineAfterLog: true,
			SortKeys:        true,
		})), nil
	}

	handler := slog.NewJSONHandler(w, opts).WithAttrs([]slog.Attr{
		slog.String("app", "replyflow"),
		slog.String("version", VERSION),
	})
	return slog.New(handler), nil
}

func initLogger(level string) error {
	logger, err := NewLogger(os.Stdout, level, isatty.IsTerminal(os.Stdout.Fd()))
	if err != nil {
		return err
	}

	slog.SetDefault(logger)
	return nil
}
