package hub

import (
	"encoding/json"
	"sync"

	pkglog "github.com/firdaus0729/shoplive/pkg/log"
)

// Hub manages all WebSocket connections on this instance. It only tracks
// connections; which stream a user is watching lives in the room store, so
// a second instance can answer that question too.
type Hub struct {
	clients    map[string]*Client // connection ID -> client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	l := pkglog.L()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l.Info().
				Str("connection_id", client.ID).
				Str("user_id", client.Session.UserID).
				Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ID]; ok && current == client {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l.Info().
				Str("connection_id", client.ID).
				Str("user_id", client.Session.UserID).
				Msg("client unregistered")
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Send delivers a message to the connection with the given ID. Unknown
// connection IDs are ignored: the peer may have disconnected between the
// registry lookup and delivery, and signaling to a gone peer is not an
// error.
func (h *Hub) Send(connectionID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if !ok {
		return nil
	}

	select {
	case client.Send <- data:
	default:
		// Send buffer full: the connection is stalled, drop it.
		go func() { h.unregister <- client }()
	}
	return nil
}

// Kick closes the connection with the given ID, if present. Used when a
// user reconnects and the previous socket must be displaced.
func (h *Hub) Kick(connectionID string) {
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if ok {
		client.Conn.Close()
	}
}
