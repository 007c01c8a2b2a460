package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

const (
	// writeWait is how long a write may block before the connection is
	// considered dead
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before dropping the client
	pongWait = 60 * time.Second

	// pingPeriod is how often pings go out; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound command frames
	maxMessageSize = 4096

	// sendBuffer is the per-client outbound queue; a client that falls
	// this far behind starts dropping events and will resync on
	// reconnect
	sendBuffer = 64
)

// Client binds one websocket connection to a room, and (after a joinRoom
// command succeeds) to a player identity.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	// playerID is set by the hub goroutine once the client has joined;
	// it is only ever read and written from that goroutine
	playerID model.PlayerID
}

func newClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
}

// trySend queues a message without blocking; a full buffer drops it
func (c *Client) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// readPump relays inbound frames to the hub until the connection dies.
// Runs as its own goroutine, one per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed",
					slog.String("remote", c.conn.RemoteAddr().String()),
					slog.Any("error", err))
			}
			return
		}
		c.hub.Receive(c, data)
	}
}

// writePump drains the send queue onto the connection and keeps the
// connection alive with periodic pings. Runs as its own goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel; the client was unregistered
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
