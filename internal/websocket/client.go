package websocket

import (
	"context"
	"sync"
	"time"

	"ondot-chat/internal/events"
	"ondot-chat/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBuffer     = 256
)

// Client is one websocket connection on one channel.
type Client struct {
	ID             string
	Identity       services.Identity
	Channel        events.Channel
	RelationshipID int64 // zero on the main channel

	conn   *websocket.Conn
	send   chan []byte
	logger *WebSocketLogger

	mu     sync.Mutex
	rooms  map[string]struct{}
	closed bool
}

func NewClient(conn *websocket.Conn, identity services.Identity, ch events.Channel, relationshipID int64, logger *WebSocketLogger) *Client {
	return &Client{
		ID:             uuid.NewString(),
		Identity:       identity,
		Channel:        ch,
		RelationshipID: relationshipID,
		conn:           conn,
		send:           make(chan []byte, sendBuffer),
		logger:         logger,
		rooms:          make(map[string]struct{}),
	}
}

// Send queues a frame without blocking. It reports false when the buffer
// is full or the client is closed.
func (c *Client) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) sendEvent(eventType string, data any) {
	payload, err := events.Encode(eventType, data)
	if err != nil {
		c.logger.Error("encode_failed", c.Identity.UserID, c.ID, err, zap.String("type", eventType))
		return
	}
	c.Send(payload)
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) addRoom(room string) {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) removeRoom(room string) {
	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
}

// Rooms returns a copy of the rooms the client joined
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// readPump processes inbound frames one at a time until the connection
// fails or ctx ends. Frames from one connection are therefore handled in
// the order they were sent.
func (c *Client) readPump(ctx context.Context, handle func(ctx context.Context, frame []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Error("unexpected_close", c.Identity.UserID, c.ID, err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		handle(ctx, frame)
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. It owns every write to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("write_failed", c.Identity.UserID, c.ID, zap.Error(err))
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
