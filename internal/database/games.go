package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"world-conquest/internal/game"
)

// GameStatus represents the current status of a game.
type GameStatus string

const (
	GameStatusActive   GameStatus = "active"   // Being played
	GameStatusFinished GameStatus = "finished" // Closed; kept for history
)

// GameInfo contains basic game information for listings.
type GameInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	MapID     string     `json:"map_id"`
	Status    GameStatus `json:"status"`
	Round     int        `json:"round"`
	CreatedAt time.Time  `json:"created_at"`
}

// ErrGameNotFound is returned when a game is not found.
var ErrGameNotFound = errors.New("game not found")

// CreateGame records a new game and returns its generated ID.
func (db *DB) CreateGame(name, mapID string) (*GameInfo, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.conn.Exec(`
		INSERT INTO games (id, name, map_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, name, mapID, GameStatusActive, now)
	if err != nil {
		return nil, err
	}
	return &GameInfo{
		ID:        id,
		Name:      name,
		MapID:     mapID,
		Status:    GameStatusActive,
		Round:     1,
		CreatedAt: now,
	}, nil
}

// GetGame retrieves a game by ID.
func (db *DB) GetGame(id string) (*GameInfo, error) {
	var g GameInfo
	var round sql.NullInt64
	err := db.conn.QueryRow(`
		SELECT g.id, g.name, g.map_id, g.status, g.created_at, s.round
		FROM games g LEFT JOIN game_state s ON s.game_id = g.id
		WHERE g.id = ?
	`, id).Scan(&g.ID, &g.Name, &g.MapID, &g.Status, &g.CreatedAt, &round)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Round = roundOf(round)
	return &g, nil
}

// ListGames returns games with the given status, newest first. An empty
// status lists every game.
func (db *DB) ListGames(status GameStatus) ([]*GameInfo, error) {
	rows, err := db.conn.Query(`
		SELECT g.id, g.name, g.map_id, g.status, g.created_at, s.round
		FROM games g LEFT JOIN game_state s ON s.game_id = g.id
		WHERE ? = '' OR g.status = ?
		ORDER BY g.created_at DESC, g.id
	`, status, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*GameInfo
	for rows.Next() {
		var g GameInfo
		var round sql.NullInt64
		if err := rows.Scan(&g.ID, &g.Name, &g.MapID, &g.Status, &g.CreatedAt, &round); err != nil {
			return nil, err
		}
		g.Round = roundOf(round)
		games = append(games, &g)
	}
	return games, rows.Err()
}

func roundOf(n sql.NullInt64) int {
	if !n.Valid {
		return 1
	}
	return int(n.Int64)
}

// EndGame marks a game as finished.
func (db *DB) EndGame(id string) error {
	res, err := db.conn.Exec(`
		UPDATE games SET status = ?, ended_at = ? WHERE id = ?
	`, GameStatusFinished, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGameNotFound
	}
	return nil
}

// SaveGameState stores the latest snapshot of a game.
func (db *DB) SaveGameState(state *game.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", state.ID, err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO game_state (game_id, state_json, current_player_id, round, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			state_json = excluded.state_json,
			current_player_id = excluded.current_player_id,
			round = excluded.round,
			updated_at = excluded.updated_at
	`, state.ID, string(data), state.CurrentPlayerID, state.Round, time.Now().UTC())
	return err
}

// LoadGameState returns the latest snapshot of a game, or ErrGameNotFound
// when none was saved.
func (db *DB) LoadGameState(gameID string) (*game.GameState, error) {
	var stateJSON string
	err := db.conn.QueryRow(`
		SELECT state_json FROM game_state WHERE game_id = ?
	`, gameID).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	var state game.GameState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", gameID, err)
	}
	return &state, nil
}

// DeleteGame permanently deletes a game and all associated data.
func (db *DB) DeleteGame(gameID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM game_actions WHERE game_id = ?`,
		`DELETE FROM game_state WHERE game_id = ?`,
		`DELETE FROM games WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, gameID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
