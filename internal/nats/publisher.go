package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"replyflow/internal/core"
)

func Subject(eventType core.EventType) string {
	return appName + "." + string(eventType)
}

// Publisher forwards events to the stream. The event id doubles as the JetStream message id,
// so a redelivered event is dropped by the server.
type Publisher struct {
	Logger *slog.Logger
	NATS   *NATS
	Hub    core.Notifier
}

func (p *Publisher) Init(_ context.Context) error {
	p.Logger = p.Logger.With("component", "nats.Publisher")
	p.Hub.Register(p)
	return nil
}

func (p *Publisher) Notify(ctx context.Context, event core.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.NATS.JS.Publish(ctx, Subject(event.Type), payload, jetstream.WithMsgID(event.ID))
	return err
}
