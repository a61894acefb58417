// Package ws fans processed events out to dashboard clients over WebSocket.
// Delivery is best effort: a failed write drops only that client.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// LiveEvent is the feed entry pushed to connected dashboards.
type LiveEvent struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	TxHash      string `json:"txHash,omitempty"`
	BlockHeight int64  `json:"blockHeight,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// client pairs a connection with its write lock. The websocket protocol
// allows at most one concurrent writer per connection, and Publish is called
// from concurrent webhook handlers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(ev LiveEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(ev)
}

// Hub tracks connected clients and broadcasts live events to them.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]*client
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard origins are not pinned; the feed is read-only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve upgrades an HTTP request and registers the connection. Inbound
// messages are drained and discarded; the feed is one-way.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("websocket client connected", zap.Int("clients", count))

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish sends an event to every connected client. Safe for concurrent
// use: writes to each connection are serialized by its write lock.
func (h *Hub) Publish(ev LiveEvent) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		if err := cl.write(ev); err != nil {
			h.drop(cl.conn)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
