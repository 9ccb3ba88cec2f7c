package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Action types for the game log
const (
	ActionJoin         = "join"
	ActionLeave        = "leave"
	ActionMove         = "move"
	ActionMoveRejected = "move_rejected"
	ActionEndTurn      = "end_turn"
)

// Action is one logged player order.
type Action struct {
	ID         int64     `json:"id"`
	GameID     string    `json:"game_id"`
	PlayerID   string    `json:"player_id,omitempty"`
	Round      int       `json:"round"`
	ActionType string    `json:"action_type"`
	ActionJSON string    `json:"action"`
	ResultJSON string    `json:"result,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogAction appends an order and its outcome to the game log. The action
// and result are stored as JSON; a nil result is stored as NULL.
func (db *DB) LogAction(gameID, playerID string, round int, actionType string, action, result any) error {
	actionJSON, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode %s action: %w", actionType, err)
	}
	var resultJSON sql.NullString
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode %s result: %w", actionType, err)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = db.conn.Exec(`
		INSERT INTO game_actions (game_id, player_id, round, action_type, action_json, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, gameID, playerID, round, actionType, string(actionJSON), resultJSON, time.Now().UTC())
	return err
}

// GetActions retrieves the log of a game in order.
func (db *DB) GetActions(gameID string) ([]*Action, error) {
	return db.actions(`
		SELECT id, game_id, player_id, round, action_type, action_json, result_json, created_at
		FROM game_actions
		WHERE game_id = ?
		ORDER BY id ASC
	`, gameID)
}

// GetActionsSince retrieves log entries after a given ID (for incremental updates).
func (db *DB) GetActionsSince(gameID string, afterID int64) ([]*Action, error) {
	return db.actions(`
		SELECT id, game_id, player_id, round, action_type, action_json, result_json, created_at
		FROM game_actions
		WHERE game_id = ? AND id > ?
		ORDER BY id ASC
	`, gameID, afterID)
}

// GetRoundActions retrieves the log entries of one round.
func (db *DB) GetRoundActions(gameID string, round int) ([]*Action, error) {
	return db.actions(`
		SELECT id, game_id, player_id, round, action_type, action_json, result_json, created_at
		FROM game_actions
		WHERE game_id = ? AND round = ?
		ORDER BY id ASC
	`, gameID, round)
}

func (db *DB) actions(query string, args ...any) ([]*Action, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Action
	for rows.Next() {
		a := &Action{}
		var player, result sql.NullString
		if err := rows.Scan(&a.ID, &a.GameID, &player, &a.Round, &a.ActionType, &a.ActionJSON, &result, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.PlayerID = player.String
		a.ResultJSON = result.String
		out = append(out, a)
	}
	return out, rows.Err()
}
