package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// signalWriteTimeout bounds a write to one websocket client.
const signalWriteTimeout = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SignalHub broadcasts published values to websocket clients. It
// implements publish.Sink.
type SignalHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	now     func() time.Time
}

// NewSignalHub creates a hub without clients.
func NewSignalHub() *SignalHub {
	return &SignalHub{
		clients: make(map[*websocket.Conn]bool),
		now:     time.Now,
	}
}

type signalMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// ServeHTTP upgrades the request and keeps the client registered until the
// connection closes.
func (h *SignalHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *SignalHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends v to every client. Clients that fail to receive are
// dropped; their read loop ends when the connection is closed.
func (h *SignalHub) Publish(kind string, v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return nil
	}

	msg, err := json.Marshal(signalMessage{Type: kind, Timestamp: h.now().UnixMilli(), Data: v})
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(h.now().Add(signalWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("dropping websocket client %s: %v", conn.RemoteAddr(), err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return nil
}

// Close disconnects every client.
func (h *SignalHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}
