// Package protocol defines the network message types for client-server communication.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the type of message.
type MessageType string

// Lobby message types
const (
	TypeCreateGame  MessageType = "create_game"
	TypeGameCreated MessageType = "game_created"
	TypeJoinGame    MessageType = "join_game"
	TypeJoinedGame  MessageType = "joined_game"
	TypeLeaveGame   MessageType = "leave_game"
	TypeLeftGame    MessageType = "left_game"
	TypeListGames   MessageType = "list_games"
	TypeGameList    MessageType = "game_list"
)

// Game flow message types
const (
	TypeGetState    MessageType = "get_state"
	TypeGameState   MessageType = "game_state"
	TypeMoveArmy    MessageType = "move_army"
	TypeArmyMoved   MessageType = "army_moved"
	TypeMoveInvalid MessageType = "move_invalid"
	TypeEndTurn     MessageType = "end_turn"
	TypeTurnChanged MessageType = "turn_changed"
)

// System message types
const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// ParsePayload unmarshals the payload into the given type.
func (m *Message) ParsePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode represents an error type.
type ErrorCode string

const (
	ErrCodeInvalidMessage ErrorCode = "invalid_message"
	ErrCodeUnknownType    ErrorCode = "unknown_type"
	ErrCodeNotYourTurn    ErrorCode = "not_your_turn"
	ErrCodeNotInGame      ErrorCode = "not_in_game"
	ErrCodeGameNotFound   ErrorCode = "game_not_found"
	ErrCodeCountryTaken   ErrorCode = "country_taken"
	ErrCodeUnknownCountry ErrorCode = "unknown_country"
	ErrCodeUnknownMap     ErrorCode = "unknown_map"
	ErrCodeInternalError  ErrorCode = "internal_error"
)

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
