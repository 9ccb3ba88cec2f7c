// Package client holds the viewer's connection to a game server and its
// local mirror of the game.
package client

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"world-conquest/internal/protocol"
)

// NetworkClient handles WebSocket communication with the server.
type NetworkClient struct {
	conn     *websocket.Conn
	sendChan chan *protocol.Message
	done     chan struct{}
	mu       sync.Mutex
	log      *zap.Logger

	// Callbacks, run on the read goroutine
	OnMessage    func(*protocol.Message)
	OnConnect    func()
	OnDisconnect func(error)

	connected bool
}

// NewNetworkClient creates a new network client.
func NewNetworkClient(log *zap.Logger) *NetworkClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &NetworkClient{
		sendChan: make(chan *protocol.Message, 64),
		done:     make(chan struct{}),
		log:      log.Named("network"),
	}
}

// WebSocketURL turns a server address into the URL of its /ws endpoint.
// Bare host:port addresses use ws://; known cloud hosts use wss:// on the
// default port.
func WebSocketURL(serverAddr string) string {
	switch {
	case strings.HasPrefix(serverAddr, "ws://"), strings.HasPrefix(serverAddr, "wss://"):
		if strings.HasSuffix(serverAddr, "/ws") {
			return serverAddr
		}
		return strings.TrimSuffix(serverAddr, "/") + "/ws"
	case strings.HasSuffix(hostOf(serverAddr), ".onrender.com"),
		strings.HasSuffix(hostOf(serverAddr), ".fly.dev"):
		return "wss://" + hostOf(serverAddr) + "/ws"
	}
	return "ws://" + serverAddr + "/ws"
}

func hostOf(addr string) string {
	if i := strings.LastIndex(addr, ":"); i != -1 {
		return addr[:i]
	}
	return addr
}

// Connect establishes a connection to the server.
func (c *NetworkClient) Connect(serverAddr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	url := WebSocketURL(serverAddr)
	c.log.Info("connecting", zap.String("url", url))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return err
	}

	c.conn = conn
	c.connected = true
	c.done = make(chan struct{})

	go c.readPump(conn, c.done)
	go c.writePump(conn, c.done)

	if c.OnConnect != nil {
		c.OnConnect()
	}
	return nil
}

// Disconnect closes the connection.
func (c *NetworkClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return
	}

	c.connected = false
	close(c.done)

	if c.conn != nil {
		c.conn.Close(websocket.StatusNormalClosure, "")
		c.conn = nil
	}
}

// IsConnected returns true if connected to server.
func (c *NetworkClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send queues a message to be sent to the server.
func (c *NetworkClient) Send(msg *protocol.Message) {
	select {
	case c.sendChan <- msg:
	default:
		c.log.Warn("send queue full, dropping message", zap.String("type", string(msg.Type)))
	}
}

// SendPayload creates and sends a message with the given type and payload.
func (c *NetworkClient) SendPayload(msgType protocol.MessageType, payload any) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	c.Send(msg)
	return nil
}

// readPump reads messages from the WebSocket.
func (c *NetworkClient) readPump(conn *websocket.Conn, done chan struct{}) {
	var readErr error
	defer func() {
		c.mu.Lock()
		wasConnected := c.connected && c.done == done
		if wasConnected {
			c.connected = false
			close(done)
		}
		c.mu.Unlock()

		if wasConnected && c.OnDisconnect != nil {
			c.OnDisconnect(readErr)
		}
	}()

	conn.SetReadLimit(1 << 22)

	for {
		// No read deadline; the server's pings keep the connection honest.
		msgType, data, err := conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				readErr = err
				c.log.Debug("read failed", zap.Error(err))
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("failed to unmarshal message", zap.Error(err))
			continue
		}

		if c.OnMessage != nil {
			c.OnMessage(&msg)
		}
	}
}

// writePump writes messages to the WebSocket.
func (c *NetworkClient) writePump(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case msg := <-c.sendChan:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := wsjson.Write(ctx, conn, msg)
			cancel()
			if err != nil {
				c.log.Warn("write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
