package testkit

import (
	"context"
	"sync"

	"replyflow/internal/core"
)

type Notification struct {
	Type    core.EventType
	Payload map[string]any
}

// Notifier records every notification.
type Notifier struct {
	mu     sync.Mutex
	events []Notification
}

func (n *Notifier) Notify(_ context.Context, eventType core.EventType, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, Notification{Type: eventType, Payload: payload})
}

func (n *Notifier) Register(core.Observer) {}

func (n *Notifier) Count(eventType core.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, event := range n.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}
