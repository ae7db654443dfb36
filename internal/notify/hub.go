// Package notify fans processing events out to the registered observers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"replyflow/internal/core"
)

var (
	eventsNotified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replyflow_events_notified_total",
		Help: "The total number of events sent to observers",
	}, []string{"type"})

	observerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replyflow_observer_errors_total",
		Help: "The total number of failed or panicked observer calls",
	}, []string{"observer"})
)

type Hub struct {
	Logger *slog.Logger

	mu        sync.RWMutex
	observers []core.Observer
}

func (h *Hub) Init(_ context.Context) error {
	h.Logger = h.Logger.With("component", "notify.Hub")
	return nil
}

func (h *Hub) Register(observer core.Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.observers = append(h.observers, observer)
}

// Notify delivers the event to every observer in registration order. Observer failures are
// logged and never reach the caller.
func (h *Hub) Notify(ctx context.Context, eventType core.EventType, payload map[string]any) {
	event := core.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	h.mu.RLock()
	observers := append([]core.Observer(nil), h.observers...)
	h.mu.RUnlock()

	eventsNotified.WithLabelValues(string(eventType)).Inc()

	for _, observer := range observers {
		h.deliver(ctx, observer, event)
	}
}

func (h *Hub) deliver(ctx context.Context, observer core.Observer, event core.Event) {
	name := fmt.Sprintf("%T", observer)

	defer func() {
		if r := recover(); r != nil {
			observerErrors.WithLabelValues(name).Inc()
			h.Logger.Error("Observer panicked", "observer", name, "event", event.Type, "panic", r)
		}
	}()

	err := observer.Notify(ctx, event)
	if err != nil {
		observerErrors.WithLabelValues(name).Inc()
		h.Logger.Warn("Observer failed", "observer", name, "event", event.Type, "error", err)
	}
}
