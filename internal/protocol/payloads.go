package protocol

import (
	"sort"
	"time"

	"world-conquest/internal/game"
	"world-conquest/pkg/maps"
)

// ==================== System Payloads ====================

// WelcomePayload greets a new connection with its player ID.
type WelcomePayload struct {
	PlayerID string `json:"player_id"`
	Version  string `json:"version"`
}

// ==================== Lobby Payloads ====================

// CreateGamePayload is sent to create a new game.
type CreateGamePayload struct {
	Name  string `json:"name"`
	MapID string `json:"map_id,omitempty"` // defaults to the server's map
}

// GameCreatedPayload is the response when a game is created.
type GameCreatedPayload struct {
	GameID string `json:"game_id"`
	Name   string `json:"name"`
	MapID  string `json:"map_id"`
}

// Observer is the CountryID for watching a game without playing.
const Observer = "observer"

// JoinGamePayload is sent to join a game. CountryID Observer (or empty)
// watches without playing.
type JoinGamePayload struct {
	GameID    string `json:"game_id"`
	CountryID string `json:"country_id"`
}

// JoinedGamePayload is the response when successfully joining a game.
type JoinedGamePayload struct {
	GameID    string `json:"game_id"`
	CountryID string `json:"country_id"`
}

// LeftGamePayload confirms a leave_game request.
type LeftGamePayload struct {
	GameID string `json:"game_id"`
}

// GameListPayload contains a list of games.
type GameListPayload struct {
	Games []GameListItem `json:"games"`
}

// GameListItem is a summary of a game.
type GameListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MapID       string `json:"map_id"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
	Round       int    `json:"round"`
}

// ==================== Game Flow Payloads ====================

// GameStatePayload contains the full game state.
type GameStatePayload struct {
	GameID          string                             `json:"game_id"`
	Name            string                             `json:"name"`
	MapID           string                             `json:"map_id"`
	Round           int                                `json:"round"`
	CurrentDate     time.Time                          `json:"current_date"`
	CurrentPlayerID string                             `json:"current_player_id"`
	Rules           game.Rules                         `json:"rules"`
	Countries       []game.Country                     `json:"countries"`
	Armies          []game.Army                        `json:"armies"`
	Ownership       map[maps.ProvinceID]maps.CountryID `json:"ownership"`
	PlayerCountries map[string]maps.CountryID          `json:"player_countries"`
	DerivedVersion  int64                              `json:"derived_version"`
}

// MoveArmyPayload orders an army to a province.
type MoveArmyPayload struct {
	ArmyID           string          `json:"army_id"`
	TargetProvinceID maps.ProvinceID `json:"target_province_id"`
}

// ArmyMovedPayload is broadcast when a move is accepted.
type ArmyMovedPayload struct {
	Army     game.Army       `json:"army"`
	From     maps.ProvinceID `json:"from"`
	Distance int             `json:"distance"`
	Annexed  bool            `json:"annexed"`
}

// MoveInvalidPayload tells the mover why an order was refused.
type MoveInvalidPayload struct {
	ArmyID string `json:"army_id"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// TurnChangedPayload is sent when the active player changes.
type TurnChangedPayload struct {
	CurrentPlayerID string    `json:"current_player_id"`
	Round           int       `json:"round"`
	NewRound        bool      `json:"new_round"`
	CurrentDate     time.Time `json:"current_date"`
}

// ==================== HTTP Payloads ====================

// ProvinceSummary describes one province for map clients.
type ProvinceSummary struct {
	ID         maps.ProvinceID   `json:"id"`
	Bounds     [4]int            `json:"bounds"` // min x, min y, max x, max y (exclusive)
	IsWater    bool              `json:"is_water"`
	PixelCount int               `json:"pixel_count"`
	Neighbors  []maps.ProvinceID `json:"neighbors"`
}

// MapPayload is the province graph of a world.
type MapPayload struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Provinces []ProvinceSummary `json:"provinces"`
}

// NewMapPayload summarises a world.
func NewMapPayload(w *maps.World) MapPayload {
	out := MapPayload{
		ID:        w.ID,
		Name:      w.Name,
		Width:     w.Width,
		Height:    w.Height,
		Provinces: make([]ProvinceSummary, 0, len(w.Provinces)),
	}
	for _, p := range w.Provinces {
		out.Provinces = append(out.Provinces, ProvinceSummary{
			ID:         p.ID,
			Bounds:     [4]int{p.Bounds.Min.X, p.Bounds.Min.Y, p.Bounds.Max.X, p.Bounds.Max.Y},
			IsWater:    p.IsWater,
			PixelCount: p.PixelCount(),
			Neighbors:  w.Graph.Neighbors(p.ID),
		})
	}
	return out
}

// NewGameStatePayload flattens a game state for the wire. Countries and
// armies are sorted by ID.
func NewGameStatePayload(g *game.GameState, derivedVersion int64) GameStatePayload {
	out := GameStatePayload{
		GameID:          g.ID,
		Name:            g.Name,
		MapID:           g.MapID,
		Round:           g.Round,
		CurrentDate:     g.CurrentDate,
		CurrentPlayerID: g.CurrentPlayerID,
		Rules:           g.Rules,
		Ownership:       g.Ownership,
		PlayerCountries: g.PlayerCountries,
		DerivedVersion:  derivedVersion,
	}
	for _, id := range sortedCountries(g) {
		out.Countries = append(out.Countries, *g.Countries[id])
	}
	for _, id := range g.ArmyIDs() {
		out.Armies = append(out.Armies, *g.Armies[id])
	}
	return out
}

// State rebuilds a game state from the payload, for client-side
// prediction. Join order is not sent, so Players is sorted by ID.
func (p GameStatePayload) State() *game.GameState {
	g := game.NewGame(p.GameID, p.Name, p.MapID, p.Rules)
	g.Round = p.Round
	g.CurrentDate = p.CurrentDate
	g.CurrentPlayerID = p.CurrentPlayerID
	for _, c := range p.Countries {
		g.AddCountry(c)
	}
	for _, a := range p.Armies {
		a := a
		g.Armies[a.ID] = &a
	}
	for id, c := range p.Ownership {
		g.Ownership[id] = c
	}
	for player, c := range p.PlayerCountries {
		g.PlayerCountries[player] = c
		g.Players = append(g.Players, player)
	}
	sort.Strings(g.Players)
	return g
}

func sortedCountries(g *game.GameState) []maps.CountryID {
	ids := make([]maps.CountryID, 0, len(g.Countries))
	for id := range g.Countries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
