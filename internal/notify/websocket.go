package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"replyflow/internal/core"
)

const (
	clientBuffer = 32
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Broadcaster streams events to websocket clients. Clients that cannot keep up are
// disconnected.
type Broadcaster struct {
	Logger *slog.Logger
	Hub    core.Notifier

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func (b *Broadcaster) Init(_ context.Context) error {
	b.Logger = b.Logger.With("component", "notify.Broadcaster")
	b.clients = map[*client]struct{}{}
	b.upgrader = websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	b.Hub.Register(b)
	return nil
}

func (b *Broadcaster) Shutdown(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		c.close()
		delete(b.clients, c)
	}
	return nil
}

func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.clients)
}

func (b *Broadcaster) Notify(_ context.Context, event core.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		select {
		case c.send <- payload:
		default:
			b.Logger.Warn("Client is too slow, disconnecting", "remote", c.conn.RemoteAddr())
			c.close()
			delete(b.clients, c)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and streams events until the client goes away.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.Logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	b.Logger.Debug("Client connected", "remote", conn.RemoteAddr())

	go b.read(c)
	b.write(c)
}

// read drains the connection so close frames are noticed.
func (b *Broadcaster) read(c *client) {
	defer b.remove(c)

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

func (b *Broadcaster) write(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}

			err := c.conn.WriteMessage(websocket.TextMessage, payload)
			if err != nil {
				b.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				b.remove(c)
				return
			}
		}
	}
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
}
