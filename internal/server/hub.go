package server

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"world-conquest/internal/protocol"
)

// Hub maintains the set of active clients and fans messages out to games.
type Hub struct {
	server   *Server
	log      *zap.Logger
	handlers *Handlers

	// Registered clients
	clients map[*Client]bool

	// Clients in each game
	gameClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(server *Server) *Hub {
	h := &Hub{
		server:      server,
		log:         server.log.Named("hub"),
		clients:     make(map[*Client]bool),
		gameClients: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
	h.handlers = NewHandlers(h)
	return h
}

// Run starts the hub's main loop. It returns when ctx is cancelled, after
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

			h.sendWelcome(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.close()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Dispatch routes a message from a client. Messages from one client are
// handled in the order they arrive.
func (h *Hub) Dispatch(client *Client, msg *protocol.Message) {
	h.handlers.Handle(client, msg)
}

// sendWelcome tells a new client its player ID.
func (h *Hub) sendWelcome(client *Client) {
	msg, _ := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomePayload{
		PlayerID: client.PlayerID,
		Version:  Version,
	})
	client.Send(msg)
}

// handleDisconnect handles a client disconnecting. A player still in a game
// leaves it, which may pass the turn on.
func (h *Hub) handleDisconnect(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	gameID := client.gameID
	if gameID != "" {
		delete(h.gameClients[gameID], client)
		client.gameID = ""
	}
	h.mu.Unlock()

	client.close()
	h.log.Debug("client disconnected", zap.String("player", client.PlayerID))

	if gameID != "" {
		go h.handlers.leave(client.PlayerID, gameID, "disconnected")
	}
}

// notifyGamePlayers sends a message to all clients in a game.
func (h *Hub) notifyGamePlayers(gameID string, msgType protocol.MessageType, payload any) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		h.log.Error("failed to encode broadcast", zap.String("type", string(msgType)), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.gameClients[gameID] {
		client.Send(msg)
	}
}

// AddClientToGame adds a client to a game's client list.
func (h *Hub) AddClientToGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gameClients[gameID] == nil {
		h.gameClients[gameID] = make(map[*Client]bool)
	}
	h.gameClients[gameID][client] = true
	client.gameID = gameID
}

// RemoveClientFromGame removes a client from a game.
func (h *Hub) RemoveClientFromGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.gameClients[gameID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.gameClients, gameID)
		}
	}
	if client.gameID == gameID {
		client.gameID = ""
	}
}

// GameOf returns the game a client is in, or "".
func (h *Hub) GameOf(client *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.gameID
}
