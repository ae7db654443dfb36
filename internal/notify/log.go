package notify

import (
	"context"
	"log/slog"

	"replyflow/internal/core"
)

// LogObserver writes every event to the structured log.
type LogObserver struct {
	Logger *slog.Logger
	Hub    core.Notifier
}

func (o *LogObserver) Init(_ context.Context) error {
	o.Logger = o.Logger.With("component", "notify.LogObserver")
	o.Hub.Register(o)
	return nil
}

func (o *LogObserver) Notify(ctx context.Context, event core.Event) error {
	attrs := []any{"event_id", event.ID}
	for _, key := range []string{"platform", "comment_id", "reply_id", "category", "reply_status"} {
		if value, ok := event.Payload[key]; ok {
			attrs = append(attrs, key, value)
		}
	}

	o.Logger.InfoContext(ctx, string(event.Type), attrs...)
	return nil
}
