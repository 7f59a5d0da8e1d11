package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/crewlinkhq/crewlink/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16

	defaultBufferSize = 32
)

// Message is a JSON payload delivered to a connected actor.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub fans lifecycle events out to connected companies and workers. Delivery
// is best-effort: a slow client is dropped rather than blocking the rest.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*connection]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logger.WithModule("realtime"),
	}
}

// recipientKey scopes connections to one actor; companies and workers may
// share raw IDs across tables so the role participates in the key.
func recipientKey(role, id string) string {
	return role + ":" + id
}

// Serve upgrades the HTTP connection to a WebSocket and registers the actor.
func (h *Hub) Serve(role, actorID string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &connection{
		hub:    h,
		socket: conn,
		key:    recipientKey(role, actorID),
		send:   make(chan Message, defaultBufferSize),
	}

	h.register(client)

	go client.writeLoop()
	client.readLoop()
}

// Broadcast delivers an event to every open connection for the actor.
func (h *Hub) Broadcast(role, actorID string, message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[recipientKey(role, actorID)] {
		select {
		case client.send <- message:
		default:
			h.log.Warn("dropping backpressured client", zap.String("recipient", client.key))
			go client.close()
		}
	}
}

func (h *Hub) register(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.key] == nil {
		h.clients[client.key] = make(map[*connection]struct{})
	}
	h.clients[client.key][client] = struct{}{}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients := h.clients[client.key]; clients != nil {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.key)
		}
	}
}

type connection struct {
	hub    *Hub
	socket *websocket.Conn
	key    string
	send   chan Message
	once   sync.Once
}

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Clients do not send application messages; the read loop only
		// services control frames and detects disconnects.
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close unregisters the connection and closes the socket. The send channel is
// left open so concurrent broadcasters never write to a closed channel; the
// write loop drains via socket error instead.
func (c *connection) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		_ = c.socket.Close()
	})
}
