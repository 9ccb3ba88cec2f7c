package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"world-conquest/internal/database"
	"world-conquest/internal/game"
	"world-conquest/internal/protocol"
	"world-conquest/internal/session"
)

var (
	errInvalidMessage = errors.New("invalid message")
	errUnknownType    = errors.New("unknown message type")
)

// Handlers processes incoming messages.
type Handlers struct {
	hub *Hub
	srv *Server
	log *zap.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(hub *Hub) *Handlers {
	return &Handlers{hub: hub, srv: hub.server, log: hub.server.log.Named("handlers")}
}

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(client *Client, msg *protocol.Message) {
	var err error

	switch msg.Type {
	case protocol.TypePing:
		h.reply(client, msg.ID, protocol.TypePong, struct{}{})
	case protocol.TypeCreateGame:
		err = h.handleCreateGame(client, msg)
	case protocol.TypeJoinGame:
		err = h.handleJoinGame(client, msg)
	case protocol.TypeLeaveGame:
		err = h.handleLeaveGame(client, msg)
	case protocol.TypeListGames:
		err = h.handleListGames(client, msg)
	case protocol.TypeGetState:
		err = h.handleGetState(client, msg)
	case protocol.TypeMoveArmy:
		err = h.handleMoveArmy(client, msg)
	case protocol.TypeEndTurn:
		err = h.handleEndTurn(client, msg)
	default:
		err = fmt.Errorf("%w: %q", errUnknownType, msg.Type)
	}

	if err != nil {
		h.log.Debug("request failed",
			zap.String("player", client.PlayerID),
			zap.String("type", string(msg.Type)),
			zap.Error(err))
		h.sendError(client, msg.ID, err)
	}
}

// ==================== Lobby ====================

func (h *Handlers) handleCreateGame(client *Client, msg *protocol.Message) error {
	var payload protocol.CreateGamePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}
	if payload.Name == "" {
		payload.Name = "New Game"
	}
	if payload.MapID == "" {
		payload.MapID = h.srv.mapID
	}

	sess, err := h.srv.createGame(payload.Name, payload.MapID)
	if err != nil {
		return err
	}

	h.reply(client, msg.ID, protocol.TypeGameCreated, protocol.GameCreatedPayload{
		GameID: sess.ID(),
		Name:   payload.Name,
		MapID:  payload.MapID,
	})
	return nil
}

func (h *Handlers) handleJoinGame(client *Client, msg *protocol.Message) error {
	var payload protocol.JoinGamePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	sess, ok := h.srv.sessions.Get(payload.GameID)
	if !ok {
		return fmt.Errorf("%w: %s", database.ErrGameNotFound, payload.GameID)
	}

	// One game per connection.
	if current := h.hub.GameOf(client); current != "" && current != sess.ID() {
		h.hub.RemoveClientFromGame(client, current)
		h.leave(client.PlayerID, current, "joined another game")
	}

	if err := sess.Join(client.PlayerID, payload.CountryID); err != nil {
		return err
	}
	h.hub.AddClientToGame(client, sess.ID())

	country := payload.CountryID
	if country == "" {
		country = session.Observer
	}
	h.log.Info("player joined",
		zap.String("game", sess.ID()),
		zap.String("player", client.PlayerID),
		zap.String("country", country))

	state := h.persist(sess)
	h.logAction(sess.ID(), client.PlayerID, state.Round, database.ActionJoin, payload, nil)

	h.reply(client, msg.ID, protocol.TypeJoinedGame, protocol.JoinedGamePayload{
		GameID:    sess.ID(),
		CountryID: country,
	})
	h.broadcastState(sess, state)
	return nil
}

func (h *Handlers) handleLeaveGame(client *Client, msg *protocol.Message) error {
	gameID := h.hub.GameOf(client)
	if gameID == "" {
		return game.ErrNotInGame
	}

	h.hub.RemoveClientFromGame(client, gameID)
	h.leave(client.PlayerID, gameID, "left")

	h.reply(client, msg.ID, protocol.TypeLeftGame, protocol.LeftGamePayload{GameID: gameID})
	return nil
}

// leave takes a player out of a game and tells the rest of the table.
func (h *Handlers) leave(playerID, gameID, reason string) {
	sess, ok := h.srv.sessions.Get(gameID)
	if !ok || !sess.HasPlayer(playerID) {
		return
	}

	remaining := sess.Leave(playerID)
	h.log.Info("player left",
		zap.String("game", gameID),
		zap.String("player", playerID),
		zap.String("reason", reason),
		zap.Bool("players_remaining", remaining))

	state := h.persist(sess)
	h.logAction(gameID, playerID, state.Round, database.ActionLeave, map[string]string{"reason": reason}, nil)
	h.broadcastState(sess, state)
}

func (h *Handlers) handleListGames(client *Client, msg *protocol.Message) error {
	games, err := h.srv.db.ListGames("")
	if err != nil {
		return err
	}

	items := make([]protocol.GameListItem, 0, len(games))
	for _, g := range games {
		item := protocol.GameListItem{
			ID:     g.ID,
			Name:   g.Name,
			MapID:  g.MapID,
			Status: string(g.Status),
			Round:  g.Round,
		}
		if sess, ok := h.srv.sessions.Get(g.ID); ok {
			state := sess.Snapshot()
			item.PlayerCount = len(state.Players)
			item.Round = state.Round
		}
		items = append(items, item)
	}

	h.reply(client, msg.ID, protocol.TypeGameList, protocol.GameListPayload{Games: items})
	return nil
}

// ==================== Game Flow ====================

func (h *Handlers) handleGetState(client *Client, msg *protocol.Message) error {
	sess, err := h.clientSession(client)
	if err != nil {
		return err
	}
	h.reply(client, msg.ID, protocol.TypeGameState, newStatePayload(sess))
	return nil
}

// handleMoveArmy validates and applies a move. Rejections go back to the
// mover only; accepted moves are broadcast to the game.
func (h *Handlers) handleMoveArmy(client *Client, msg *protocol.Message) error {
	sess, err := h.clientSession(client)
	if err != nil {
		return err
	}

	var payload protocol.MoveArmyPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	res, err := sess.MoveArmy(client.PlayerID, payload.ArmyID, payload.TargetProvinceID)
	if reason := game.Reason(err); reason != "" {
		invalid := protocol.MoveInvalidPayload{ArmyID: payload.ArmyID, Reason: reason}
		var rej *game.MoveRejection
		if errors.As(err, &rej) {
			invalid.Detail = rej.Detail
		}
		h.logAction(sess.ID(), client.PlayerID, sess.Round(), database.ActionMoveRejected, payload, invalid)
		h.reply(client, msg.ID, protocol.TypeMoveInvalid, invalid)
		return nil
	}
	if err != nil {
		return err
	}

	moved := protocol.ArmyMovedPayload{
		Army:     res.Army,
		From:     res.From,
		Distance: res.Distance,
		Annexed:  res.Annexed,
	}
	state := h.persist(sess)
	h.logAction(sess.ID(), client.PlayerID, state.Round, database.ActionMove, payload, moved)

	h.hub.notifyGamePlayers(sess.ID(), protocol.TypeArmyMoved, moved)
	h.broadcastState(sess, state)
	return nil
}

func (h *Handlers) handleEndTurn(client *Client, msg *protocol.Message) error {
	sess, err := h.clientSession(client)
	if err != nil {
		return err
	}

	res, err := sess.EndTurn(client.PlayerID)
	if err != nil {
		return err
	}

	state := h.persist(sess)
	h.logAction(sess.ID(), client.PlayerID, state.Round, database.ActionEndTurn, struct{}{}, res)

	h.hub.notifyGamePlayers(sess.ID(), protocol.TypeTurnChanged, protocol.TurnChangedPayload{
		CurrentPlayerID: res.PlayerID,
		Round:           res.Round,
		NewRound:        res.NewRound,
		CurrentDate:     state.CurrentDate,
	})
	h.broadcastState(sess, state)
	return nil
}

// ==================== Helpers ====================

// clientSession returns the game the client has joined.
func (h *Handlers) clientSession(client *Client) (*session.Session, error) {
	gameID := h.hub.GameOf(client)
	if gameID == "" {
		return nil, game.ErrNotInGame
	}
	sess, ok := h.srv.sessions.Get(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", database.ErrGameNotFound, gameID)
	}
	return sess, nil
}

// persist saves the current state of a game and returns the saved copy.
func (h *Handlers) persist(sess *session.Session) *game.GameState {
	h.srv.saveMu.Lock()
	defer h.srv.saveMu.Unlock()

	state := sess.Snapshot()
	if err := h.srv.db.SaveGameState(state); err != nil {
		h.log.Error("failed to save game state", zap.String("game", state.ID), zap.Error(err))
	}
	return state
}

func (h *Handlers) logAction(gameID, playerID string, round int, actionType string, action, result any) {
	if err := h.srv.db.LogAction(gameID, playerID, round, actionType, action, result); err != nil {
		h.log.Warn("failed to log action",
			zap.String("game", gameID),
			zap.String("action", actionType),
			zap.Error(err))
	}
}

// broadcastState sends a state snapshot to everyone in the game.
func (h *Handlers) broadcastState(sess *session.Session, state *game.GameState) {
	h.hub.notifyGamePlayers(sess.ID(), protocol.TypeGameState,
		protocol.NewGameStatePayload(state, sess.Derived().Version))
}

func newStatePayload(sess *session.Session) protocol.GameStatePayload {
	return protocol.NewGameStatePayload(sess.Snapshot(), sess.Derived().Version)
}

// reply sends a response carrying the request's message ID.
func (h *Handlers) reply(client *Client, msgID string, msgType protocol.MessageType, payload any) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		h.log.Error("failed to encode reply", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	msg.ID = msgID
	client.Send(msg)
}

// sendError sends an error response.
func (h *Handlers) sendError(client *Client, msgID string, err error) {
	h.reply(client, msgID, protocol.TypeError, protocol.ErrorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	})
}

func parse(msg *protocol.Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: missing payload", errInvalidMessage)
	}
	if err := msg.ParsePayload(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	return nil
}

func errorCode(err error) protocol.ErrorCode {
	switch {
	case errors.Is(err, errInvalidMessage):
		return protocol.ErrCodeInvalidMessage
	case errors.Is(err, errUnknownType):
		return protocol.ErrCodeUnknownType
	case errors.Is(err, game.ErrNotYourTurn):
		return protocol.ErrCodeNotYourTurn
	case errors.Is(err, game.ErrNotInGame):
		return protocol.ErrCodeNotInGame
	case errors.Is(err, database.ErrGameNotFound):
		return protocol.ErrCodeGameNotFound
	case errors.Is(err, game.ErrCountryTaken):
		return protocol.ErrCodeCountryTaken
	case errors.Is(err, game.ErrUnknownCountry):
		return protocol.ErrCodeUnknownCountry
	case errors.Is(err, ErrUnknownMap):
		return protocol.ErrCodeUnknownMap
	}
	return protocol.ErrCodeInternalError
}
