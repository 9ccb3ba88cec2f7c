// Package game contains the movement and turn rules for World Conquest.
// This package is shared between the viewer's prediction and the server.
package game

import (
	"fmt"
	"sort"
	"time"

	"world-conquest/pkg/maps"
)

// Rules are the tunables shared by prediction and authority.
type Rules struct {
	MaxMoveDepth  int  `json:"max_move_depth" yaml:"max_move_depth"`
	MovesPerRound int  `json:"moves_per_round" yaml:"moves_per_round"`
	AnnexOnMove   bool `json:"annex_on_move" yaml:"annex_on_move"`
}

// DefaultRules returns the server's rules.
func DefaultRules() Rules {
	return Rules{
		MaxMoveDepth:  10,
		MovesPerRound: 5,
		AnnexOnMove:   true,
	}
}

// StartDate is the in-game calendar date of round 1.
var StartDate = time.Date(1836, time.January, 1, 0, 0, 0, 0, time.UTC)

// GameState represents the complete state of a game.
type GameState struct {
	ID              string                      `json:"id"`
	Name            string                      `json:"name"`
	MapID           string                      `json:"map_id"`
	Rules           Rules                       `json:"rules"`
	Round           int                         `json:"round"`
	CurrentDate     time.Time                   `json:"current_date"`
	CurrentPlayerID string                      `json:"current_player_id"`
	Players         []string                    `json:"players"` // join order, observers included
	PlayerCountries map[string]maps.CountryID   `json:"player_countries"`
	Countries       map[maps.CountryID]*Country `json:"countries"`
	Armies          map[string]*Army            `json:"armies"`
	Ownership       maps.Ownership              `json:"ownership"`
}

// NewGame creates an empty game on the given map.
func NewGame(id, name, mapID string, rules Rules) *GameState {
	return &GameState{
		ID:              id,
		Name:            name,
		MapID:           mapID,
		Rules:           rules,
		Round:           1,
		CurrentDate:     StartDate,
		PlayerCountries: make(map[string]maps.CountryID),
		Countries:       make(map[maps.CountryID]*Country),
		Armies:          make(map[string]*Army),
		Ownership:       make(maps.Ownership),
	}
}

// AddCountry registers a playable country.
func (g *GameState) AddCountry(c Country) {
	cc := c
	g.Countries[c.ID] = &cc
}

// AddArmy places a new army. Its moves start at the full round budget when
// MovesRemaining is zero.
func (g *GameState) AddArmy(a Army) error {
	if _, ok := g.Countries[a.CountryID]; !ok {
		return fmt.Errorf("army %s: %w: %s", a.ID, ErrUnknownCountry, a.CountryID)
	}
	if _, ok := g.Armies[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateArmy, a.ID)
	}
	if a.MovesRemaining == 0 {
		a.MovesRemaining = g.Rules.MovesPerRound
	}
	g.Armies[a.ID] = &a
	return nil
}

// Army implements ArmyLookup with a copy of the stored record.
func (g *GameState) Army(id string) (Army, bool) {
	a, ok := g.Armies[id]
	if !ok {
		return Army{}, false
	}
	return *a, true
}

// ArmyIDs returns all army IDs in sorted order.
func (g *GameState) ArmyIDs() []string {
	ids := make([]string, 0, len(g.Armies))
	for id := range g.Armies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Owner implements maps.OwnerFunc over the game's ownership.
func (g *GameState) Owner(id maps.ProvinceID) (maps.CountryID, bool) {
	return g.Ownership.Owner(id)
}

// SetOwner changes a province's owner. An empty country clears it.
func (g *GameState) SetOwner(province maps.ProvinceID, country maps.CountryID) error {
	if country == "" {
		delete(g.Ownership, province)
		return nil
	}
	if _, ok := g.Countries[country]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	g.Ownership[province] = country
	return nil
}

// CountryOf returns the country a player controls.
func (g *GameState) CountryOf(playerID string) (maps.CountryID, bool) {
	c, ok := g.PlayerCountries[playerID]
	return c, ok
}

// HasPlayer reports whether the player has joined, as player or observer.
func (g *GameState) HasPlayer(playerID string) bool {
	for _, id := range g.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// AddPlayer joins a player without a country (an observer).
func (g *GameState) AddPlayer(playerID string) {
	if !g.HasPlayer(playerID) {
		g.Players = append(g.Players, playerID)
	}
}

// AssignCountry gives a player control of a country. A player switching
// countries releases the old one.
func (g *GameState) AssignCountry(playerID string, country maps.CountryID) error {
	c, ok := g.Countries[country]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	if c.PlayerID != "" && c.PlayerID != playerID {
		return fmt.Errorf("%w: %s", ErrCountryTaken, country)
	}

	if old, ok := g.PlayerCountries[playerID]; ok && old != country {
		if oc := g.Countries[old]; oc != nil {
			oc.PlayerID = ""
		}
	}
	c.PlayerID = playerID
	g.PlayerCountries[playerID] = country
	g.AddPlayer(playerID)

	if g.CurrentPlayerID == "" {
		g.CurrentPlayerID = playerID
	}
	return nil
}

// RemovePlayer drops a player and frees their country. If it was their
// turn, play passes to the next active player, starting a new round when
// it wraps around as EndTurn would.
func (g *GameState) RemovePlayer(playerID string) {
	if !g.HasPlayer(playerID) {
		return
	}
	next, wraps := "", false
	if g.CurrentPlayerID == playerID {
		next = g.nextAfter(playerID)
		active := g.ActivePlayers()
		wraps = next != "" && indexOf(active, playerID) == len(active)-1
	}

	if c, ok := g.PlayerCountries[playerID]; ok {
		if country := g.Countries[c]; country != nil {
			country.PlayerID = ""
		}
		delete(g.PlayerCountries, playerID)
	}
	players := g.Players[:0]
	for _, id := range g.Players {
		if id != playerID {
			players = append(players, id)
		}
	}
	g.Players = players

	if g.CurrentPlayerID == playerID {
		g.CurrentPlayerID = next
		if wraps {
			g.startRound()
		}
	}
}

// Palette returns the stock palette with each country's colour. Countries
// with an unparsable colour are drawn as unowned.
func (g *GameState) Palette() maps.Palette {
	pal := maps.DefaultPalette()
	for id, c := range g.Countries {
		if col, ok := maps.ParseHexColor(c.Color); ok {
			pal.Countries[id] = col
		}
	}
	return pal
}

// MoveResult describes an accepted move.
type MoveResult struct {
	Army     Army            `json:"army"`
	From     maps.ProvinceID `json:"from"`
	Distance int             `json:"distance"`
	Annexed  bool            `json:"annexed"`
}

// Geography is what the rules need to know about the map.
type Geography interface {
	DistanceOracle
	Province(id maps.ProvinceID) *maps.Province
}

// ApplyMove validates and commits a move order. A rejected move leaves the
// state untouched; an accepted one updates the army's province and moves
// together.
func (g *GameState) ApplyMove(req MoveRequest, geo Geography) (MoveResult, error) {
	moved, d, err := ValidateMove(req, g, geo, g.Rules.MaxMoveDepth)
	if err != nil {
		return MoveResult{}, err
	}

	a := g.Armies[moved.ID]
	res := MoveResult{From: a.ProvinceID, Distance: d}
	*a = moved

	if g.Rules.AnnexOnMove {
		if p := geo.Province(moved.ProvinceID); p != nil && !p.IsWater {
			if _, owned := g.Ownership.Owner(p.ID); !owned {
				g.Ownership[p.ID] = moved.CountryID
				res.Annexed = true
			}
		}
	}
	res.Army = moved
	return res, nil
}

// Clone returns a deep copy of the state.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Players = append([]string(nil), g.Players...)
	c.PlayerCountries = make(map[string]maps.CountryID, len(g.PlayerCountries))
	for k, v := range g.PlayerCountries {
		c.PlayerCountries[k] = v
	}
	c.Countries = make(map[maps.CountryID]*Country, len(g.Countries))
	for k, v := range g.Countries {
		cc := *v
		c.Countries[k] = &cc
	}
	c.Armies = make(map[string]*Army, len(g.Armies))
	for k, v := range g.Armies {
		a := *v
		c.Armies[k] = &a
	}
	c.Ownership = g.Ownership.Clone()
	return &c
}
