package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

// Handler processes room traffic. Both methods are invoked from the
// owning hub's single goroutine, so command handling for one room never
// interleaves and client message order is preserved.
type Handler interface {
	HandleCommand(ctx context.Context, hub *Hub, client *Client, data []byte)
	HandleDisconnect(ctx context.Context, hub *Hub, client *Client)
}

type inbound struct {
	client *Client
	data   []byte
}

// Hub manages the websocket clients of a single room and serializes
// their inbound commands
type Hub struct {
	roomCode model.RoomCode
	handler  Handler
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	incoming   chan inbound
	done       chan struct{}
}

// NewHub creates a new Hub for a room
func NewHub(roomCode model.RoomCode, handler Handler, logger *slog.Logger) *Hub {
	return &Hub{
		roomCode:   roomCode,
		handler:    handler,
		logger:     logger.With(slog.String("room", string(roomCode))),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inbound, 256),
		done:       make(chan struct{}),
	}
}

// RoomCode returns the room this hub serves
func (h *Hub) RoomCode() model.RoomCode {
	return h.roomCode
}

// Run is the hub's event loop; all command processing for the room
// happens on this goroutine
func (h *Hub) Run() {
	ctx := context.Background()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", slog.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			if ok {
				h.logger.Info("client disconnected",
					slog.String("player_id", string(client.playerID)),
					slog.Int("total_clients", count))
				h.handler.HandleDisconnect(ctx, h, client)
			}

		case msg := <-h.incoming:
			h.handler.HandleCommand(ctx, h, msg.client, msg.data)

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Receive queues an inbound frame for processing
func (h *Hub) Receive(client *Client, data []byte) {
	select {
	case h.incoming <- inbound{client: client, data: data}:
	case <-h.done:
	}
}

// Broadcast sends an event to every client in the room. It is safe to
// call from any goroutine, so dropped-event logs identify clients by
// address; playerID belongs to the hub goroutine.
func (h *Hub) Broadcast(event any) {
	data := marshalEvent(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.trySend(data) {
			h.logger.Warn("event dropped - client buffer full",
				slog.String("remote_addr", client.conn.RemoteAddr().String()))
		}
	}
}

// SendTo sends an event to a single client
func (h *Hub) SendTo(client *Client, event any) {
	if !client.trySend(marshalEvent(event)) {
		h.logger.Warn("event dropped - client buffer full",
			slog.String("remote_addr", client.conn.RemoteAddr().String()))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// HubManager owns the hubs for all rooms
type HubManager struct {
	mu     sync.RWMutex
	hubs   map[model.RoomCode]*Hub
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomCode]*Hub),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// GetOrCreateHub returns the hub for a room, starting one if needed
func (m *HubManager) GetOrCreateHub(roomCode model.RoomCode, handler Handler) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		return hub
	}

	hub := NewHub(roomCode, handler, m.logger)
	m.hubs[roomCode] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomCode model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomCode]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(roomCode model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		hub.Close()
		delete(m.hubs, roomCode)
		m.logger.Info("hub removed", slog.String("room", string(roomCode)))
	}
}

// CleanupEmptyHubs removes hubs with no clients; called alongside the
// room expiry sweep
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, code)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removed))
	}
}
