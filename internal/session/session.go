// Package session holds running games: the shared world, the mutable game
// state and the ownership-derived views rebuilt after every change.
package session

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"world-conquest/internal/game"
	"world-conquest/pkg/maps"
)

// Observer is the join value for watching a game without a country.
const Observer = "observer"

// Derived is everything computed from ownership. A new value is published
// after each ownership change; published values are never modified.
type Derived struct {
	Version int64
	Borders map[maps.ProvinceID]*maps.BorderSet
	Groups  []maps.TerritoryGroup
	Image   *image.NRGBA
}

// Session is one running game.
type Session struct {
	world *maps.World
	log   *zap.Logger

	mu      sync.Mutex
	state   *game.GameState
	version int64

	derived atomic.Pointer[Derived]
}

// New wraps a seeded game state. The world must be the map the state was
// seeded against.
func New(world *maps.World, state *game.GameState, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		world: world,
		state: state,
		log:   log.With(zap.String("game", state.ID)),
	}
	s.rebuild()
	return s
}

// ID returns the game ID.
func (s *Session) ID() string {
	return s.state.ID
}

// World returns the session's map.
func (s *Session) World() *maps.World {
	return s.world
}

// Derived returns the latest ownership-derived views.
func (s *Session) Derived() *Derived {
	return s.derived.Load()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() *game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Join adds a player. Country "observer" (or empty) joins without one.
func (s *Session) Join(playerID, country string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if country == "" || country == Observer {
		s.state.AddPlayer(playerID)
		return nil
	}
	return s.state.AssignCountry(playerID, maps.CountryID(country))
}

// Leave removes a player and reports whether anyone is left.
func (s *Session) Leave(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RemovePlayer(playerID)
	return len(s.state.Players) > 0
}

// Round returns the current round.
func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Round
}

// HasPlayer reports whether the player is in this game.
func (s *Session) HasPlayer(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HasPlayer(playerID)
}

// MoveArmy validates and applies a move for the player's country. The
// army's province and moves change together under the session lock.
func (s *Session) MoveArmy(playerID, armyID string, target maps.ProvinceID) (game.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	country, _ := s.state.CountryOf(playerID)
	res, err := s.state.ApplyMove(game.MoveRequest{
		ArmyID:    armyID,
		CountryID: country,
		Target:    target,
	}, s.world)
	if err != nil {
		s.log.Debug("move rejected",
			zap.String("player", playerID),
			zap.String("army", armyID),
			zap.Stringer("target", target),
			zap.Error(err))
		return res, err
	}

	s.log.Info("army moved",
		zap.String("army", armyID),
		zap.Stringer("from", res.From),
		zap.Stringer("to", target),
		zap.Int("distance", res.Distance),
		zap.Bool("annexed", res.Annexed))
	if res.Annexed {
		s.rebuild()
	}
	return res, nil
}

// EndTurn ends the player's turn.
func (s *Session) EndTurn(playerID string) (game.TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.state.EndTurn(playerID)
	if err != nil {
		return res, err
	}
	s.log.Info("turn ended",
		zap.String("player", playerID),
		zap.String("next", res.PlayerID),
		zap.Int("round", res.Round))
	return res, nil
}

// SetOwner changes a province's owner and republishes the derived views.
func (s *Session) SetOwner(province maps.ProvinceID, country maps.CountryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.world.Province(province) == nil {
		return fmt.Errorf("%w: %s", game.ErrUnknownProvince, province)
	}
	if err := s.state.SetOwner(province, country); err != nil {
		return err
	}
	s.rebuild()
	return nil
}

// rebuild recomputes the derived views from a private copy of the
// ownership and publishes them in one swap. Callers hold s.mu, except New.
func (s *Session) rebuild() {
	owners := s.state.Ownership.Clone()
	borders := s.world.Borders(owners.Owner)

	s.version++
	d := &Derived{
		Version: s.version,
		Borders: borders,
		Groups:  s.world.Groups(owners.Owner),
		Image:   maps.Render(s.world, owners.Owner, borders, s.state.Palette()),
	}
	s.derived.Store(d)
	s.log.Debug("derived views rebuilt",
		zap.Int64("version", d.Version),
		zap.Int("groups", len(d.Groups)))
}
