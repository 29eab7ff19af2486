package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const hubWriteWait = 5 * time.Second

// Hub pushes order events to connected admin websocket clients
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

type hubMessage struct {
	Type  string `json:"type"`
	Event any    `json:"event"`
}

// NewHub creates a hub. Cross-origin upgrades are accepted only from allowedOrigins.
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin] || origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
		logger: util.GetLogger(),
	}
}

func (h *Hub) Name() string { return "websocket" }

// ServeHTTP upgrades the connection and keeps it registered until the client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) OrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return h.broadcast(ctx, hubMessage{Type: event.EventType, Event: event})
}

func (h *Hub) CheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	return h.broadcast(ctx, hubMessage{Type: event.EventType, Event: event})
}

func (h *Hub) broadcast(ctx context.Context, msg hubMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(hubWriteWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(deadline)
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("Dropping websocket client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		conn.Close()
		delete(h.clients, conn)
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
