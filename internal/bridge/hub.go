package bridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"aerolink/pkg/logging"
)

// Hub fans telemetry and event payloads out to connected websocket
// clients. Slow or broken clients are dropped on the first failed write.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bridge binds to loopback; same-host pages may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     slog.Default().With("component", "bridge"),
		clients: make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades the request and tracks the client until it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	h.log.Info("client connected", "client", id, "remote", r.RemoteAddr)

	// Reads are discarded; the bridge is push-only. The read loop notices
	// the close handshake and tears the client down.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(id)
				return
			}
		}
	}()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends v as one JSON text message to every client.
func (h *Hub) Broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Error("broadcast marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	conns := make(map[string]*websocket.Conn, len(h.clients))
	for id, c := range h.clients {
		conns[id] = c
	}
	h.mu.Unlock()

	logging.Trace(h.log, "broadcast", "bytes", len(payload), "clients", len(conns))
	for id, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Info("client dropped", "client", id, "error", err)
			h.drop(id)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.clients
	h.clients = make(map[string]*websocket.Conn)
	h.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	conn, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}
