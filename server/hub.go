package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/telemetry"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Client is one WebSocket connection. Writes are serialised by mu.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes v as a JSON text frame.
func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks connected clients and fans snapshots out to them.
type Hub struct {
	clients   map[*Client]struct{}
	clientsMu sync.Mutex

	// Latest undelivered snapshot; older ones are dropped.
	pending chan *telemetry.Snapshot
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		pending: make(chan *telemetry.Snapshot, 1),
		logger:  slog.Default(),
	}
}

// Publish queues snap for broadcast without blocking the caller.
func (h *Hub) Publish(snap *telemetry.Snapshot) {
	select {
	case h.pending <- snap:
	default:
		// Replace the stale snapshot with the newer one.
		select {
		case <-h.pending:
		default:
		}
		select {
		case h.pending <- snap:
		default:
		}
	}
}

// Run broadcasts published snapshots until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case snap := <-h.pending:
			h.Broadcast(Message{Type: MsgState, Snapshot: snap})
		}
	}
}

// Broadcast sends msg to every client, dropping clients that fail.
func (h *Hub) Broadcast(msg Message) {
	h.clientsMu.Lock()
	list := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.clientsMu.Unlock()

	for _, c := range list {
		if err := c.Send(msg); err != nil {
			h.logger.Debug("client send error", "error", err)
			h.remove(c)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = struct{}{}
	h.clientsMu.Unlock()
}

func (h *Hub) remove(c *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.clientsMu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	list := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.clientsMu.Unlock()
	for _, c := range list {
		h.remove(c)
	}
}

// ServeWS upgrades the request, greets the client with the current options
// and state, then applies its commands until the connection closes.
func (h *Hub) ServeWS(r *Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			h.logger.Warn("upgrade failed", "error", err)
			return
		}
		client := &Client{conn: conn}
		h.add(client)
		h.logger.Info("client connected", "remote", req.RemoteAddr, "clients", h.Count())

		var hello Message
		r.Do(func(sim *game.Simulation) {
			opts := sim.Options()
			stats := sim.Stats()
			hello = Message{Type: MsgHello, Options: &opts, Stats: &stats, Snapshot: sim.LightSnapshot()}
		})
		if err := client.Send(hello); err != nil {
			h.remove(client)
			return
		}

		for {
			var cmd Command
			if err := conn.ReadJSON(&cmd); err != nil {
				break
			}
			if err := client.Send(r.Handle(cmd)); err != nil {
				break
			}
		}

		h.remove(client)
		h.logger.Info("client disconnected", "remote", req.RemoteAddr, "clients", h.Count())
	}
}
