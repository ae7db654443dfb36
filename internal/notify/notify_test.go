package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"replyflow/internal/core"
	"replyflow/internal/notify"
)

type recorder struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recorder) Notify(_ context.Context, event core.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

type failing struct{}

func (failing) Notify(context.Context, core.Event) error {
	return errors.New("broken observer")
}

type panicking struct{}

func (panicking) Notify(context.Context, core.Event) error {
	panic("boom")
}

func newHub(t *testing.T) *notify.Hub {
	t.Helper()

	hub := &notify.Hub{Logger: slog.New(slog.DiscardHandler)}
	require.NoError(t, hub.Init(t.Context()))
	return hub
}

func TestHub_Notify(t *testing.T) {
	t.Parallel()

	hub := newHub(t)
	rec := &recorder{}

	hub.Register(panicking{})
	hub.Register(failing{})
	hub.Register(rec)

	hub.Notify(t.Context(), core.EventNewComment, map[string]any{"comment_id": 1})
	hub.Notify(t.Context(), core.EventReplyPosted, map[string]any{"reply_id": 2})

	require.Len(t, rec.events, 2)
	require.Equal(t, core.EventNewComment, rec.events[0].Type)
	require.Equal(t, 1, rec.events[0].Payload["comment_id"])
	require.NotEmpty(t, rec.events[0].ID)
	require.NotEqual(t, rec.events[0].ID, rec.events[1].ID)
	require.False(t, rec.events[1].Timestamp.IsZero())
}

func TestLogObserver(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	hub := newHub(t)

	observer := &notify.LogObserver{Logger: slog.New(slog.NewJSONHandler(&out, nil)), Hub: hub}
	require.NoError(t, observer.Init(t.Context()))

	hub.Notify(t.Context(), core.EventNewComment, map[string]any{"platform": "youtube", "ignored": true})

	require.Contains(t, out.String(), `"msg":"new_comment"`)
	require.Contains(t, out.String(), `"platform":"youtube"`)
	require.NotContains(t, out.String(), "ignored")
}

func TestBroadcaster(t *testing.T) {
	t.Parallel()

	hub := newHub(t)
	broadcaster := &notify.Broadcaster{Logger: slog.New(slog.DiscardHandler), Hub: hub}
	require.NoError(t, broadcaster.Init(t.Context()))

	server := httptest.NewServer(broadcaster)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return broadcaster.Clients() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Notify(t.Context(), core.EventReplyPosted, map[string]any{"reply_id": 7})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event core.Event
	require.NoError(t, json.Unmarshal(message, &event))
	require.Equal(t, core.EventReplyPosted, event.Type)
	require.InDelta(t, 7, event.Payload["reply_id"], 0)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return broadcaster.Clients() == 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, broadcaster.Shutdown(t.Context()))
}
