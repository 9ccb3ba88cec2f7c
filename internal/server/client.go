package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"world-conquest/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
	sendBuffer     = 256
)

// Client represents a connected WebSocket client. Each connection is a new
// player.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	log  *zap.Logger

	mu     sync.Mutex
	send   chan *protocol.Message
	closed bool

	PlayerID string

	gameID string // guarded by hub.mu
}

// NewClient creates a new client with a fresh player ID.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := uuid.New().String()
	return &Client{
		hub:      hub,
		conn:     conn,
		log:      hub.log.With(zap.String("player", id)),
		send:     make(chan *protocol.Message, sendBuffer),
		PlayerID: id,
	}
}

// Send queues a message for the client. A client too slow to drain its
// queue is dropped.
func (c *Client) Send(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.log.Warn("send queue full, dropping client")
		c.closed = true
		close(c.send)
	}
}

// close stops the write loop, which then closes the connection.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads messages from the WebSocket and dispatches them until the
// connection fails or ctx is cancelled.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
					c.log.Debug("websocket read failed", zap.Error(err))
				}
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug("invalid message", zap.Error(err))
			reply, _ := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{
				Code:    protocol.ErrCodeInvalidMessage,
				Message: "message is not valid JSON",
			})
			c.Send(reply)
			continue
		}

		c.hub.Dispatch(c, &msg)
	}
}

// WritePump writes queued messages to the WebSocket and keeps it alive
// with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.CloseNow()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := wsjson.Write(wctx, c.conn, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pongWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
	}
}
