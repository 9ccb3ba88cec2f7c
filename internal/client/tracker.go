package client

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"world-conquest/internal/game"
	"world-conquest/internal/protocol"
	"world-conquest/pkg/maps"
)

// Tracker mirrors one game for the viewer. Online it follows the server's
// messages; offline it is a sandbox that applies moves itself. Either way
// moves are predicted with the same rules the server enforces.
type Tracker struct {
	world *maps.World
	log   *zap.Logger

	mu       sync.Mutex
	state    *game.GameState
	version  int64
	playerID string
	gameID   string
	country  maps.CountryID
	status   string
}

// View is a consistent copy of what the tracker knows.
type View struct {
	State    *game.GameState
	Version  int64 // changes whenever ownership does
	PlayerID string
	GameID   string
	Country  maps.CountryID
	Status   string
}

// NewTracker starts from a seeded state, usually the configured scenario.
func NewTracker(world *maps.World, state *game.GameState, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		world:   world,
		log:     log.Named("tracker"),
		state:   state,
		version: 1,
	}
}

// World returns the tracked map.
func (t *Tracker) World() *maps.World {
	return t.world
}

// View returns a copy of the current view.
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return View{
		State:    t.state.Clone(),
		Version:  t.version,
		PlayerID: t.playerID,
		GameID:   t.gameID,
		Country:  t.country,
		Status:   t.status,
	}
}

// LocalPlayer is the player ID of the offline sandbox.
const LocalPlayer = "local"

// PlayAs takes a country in the sandbox.
func (t *Tracker) PlayAs(country maps.CountryID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.state.AssignCountry(LocalPlayer, country); err != nil {
		return err
	}
	t.playerID = LocalPlayer
	t.country = country
	t.status = "Playing " + string(country) + " offline"
	return nil
}

// Handle folds a server message into the mirror.
func (t *Tracker) Handle(msg *protocol.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch msg.Type {
	case protocol.TypeWelcome:
		var p protocol.WelcomePayload
		if err := msg.ParsePayload(&p); err != nil {
			return err
		}
		t.playerID = p.PlayerID
		t.status = "Connected (server " + p.Version + ")"

	case protocol.TypeJoinedGame:
		var p protocol.JoinedGamePayload
		if err := msg.ParsePayload(&p); err != nil {
			return err
		}
		t.gameID = p.GameID
		t.country = ""
		if p.CountryID != protocol.Observer {
			t.country = maps.CountryID(p.CountryID)
		}
		t.status = "Joined as " + p.CountryID

	case protocol.TypeLeftGame:
		t.gameID = ""
		t.country = ""
		t.status = "Left the game"

	case protocol.TypeGameState:
		var p protocol.GameStatePayload
		if err := msg.ParsePayload(&p); err != nil {
			return err
		}
		next := p.State()
		if !sameOwners(t.state.Ownership, next.Ownership) {
			t.version++
		}
		t.state = next

	case protocol.TypeArmyMoved:
		var p protocol.ArmyMovedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return err
		}
		a := p.Army
		t.state.Armies[a.ID] = &a
		if p.Annexed {
			t.state.Ownership[a.ProvinceID] = a.CountryID
			t.version++
		}
		t.status = fmt.Sprintf("%s moved %d to %s", a.ID, p.Distance, a.ProvinceID)

	case protocol.TypeMoveInvalid:
		var p protocol.MoveInvalidPayload
		if err := msg.ParsePayload(&p); err != nil {
			return err
		}
		t.status = p.Reason
		if p.Detail != "" {
			t.status += " (" + p.Detail + ")"
		}

	case protocol.TypeTurnChanged:
		var p protocol.TurnChangedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return err
		}
		t.status = fmt.Sprintf("Round %d, %s", p.Round, p.CurrentDate.Format("Jan 2006"))
		if p.CurrentPlayerID == t.playerID {
			t.status += ": your turn"
		}

	case protocol.TypeError:
		var p protocol.ErrorPayload
		if err := msg.ParsePayload(&p); err != nil {
			return err
		}
		t.status = "Error: " + p.Message

	default:
		t.log.Debug("ignored message", zap.String("type", string(msg.Type)))
	}
	return nil
}

// Predict validates a move exactly as the server would.
func (t *Tracker) Predict(armyID string, target maps.ProvinceID) (game.Army, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return game.ValidateMove(t.request(armyID, target), t.state, t.world, t.state.Rules.MaxMoveDepth)
}

// Affordable lists the provinces an army of the tracked country can reach
// with its remaining moves.
func (t *Tracker) Affordable(armyID string) map[maps.ProvinceID]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	army, ok := t.state.Army(armyID)
	if !ok || army.CountryID != t.country || t.country == "" {
		return nil
	}
	return game.Affordable(army, t.world.Graph, t.state.Rules.MaxMoveDepth)
}

// MoveLocal applies a move in the sandbox.
func (t *Tracker) MoveLocal(armyID string, target maps.ProvinceID) (game.MoveResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res, err := t.state.ApplyMove(t.request(armyID, target), t.world)
	if err != nil {
		t.log.Debug("sandbox move rejected", zap.String("army", armyID), zap.Error(err))
		t.status = err.Error()
		return res, err
	}
	if res.Annexed {
		t.version++
	}
	t.status = fmt.Sprintf("%s moved %d to %s", armyID, res.Distance, target)
	return res, nil
}

// EndTurnLocal ends the sandbox player's turn. With a single player every
// turn ends the round.
func (t *Tracker) EndTurnLocal() (game.TurnResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, err := t.state.EndTurn(t.playerID)
	if err != nil {
		return res, err
	}
	t.status = fmt.Sprintf("Round %d, %s", res.Round, t.state.CurrentDate.Format("Jan 2006"))
	return res, nil
}

// ArmyAt returns the tracked country's first army in a province, by ID.
func (t *Tracker) ArmyAt(province maps.ProvinceID) (game.Army, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.state.ArmyIDs() {
		a := t.state.Armies[id]
		if a.ProvinceID == province && a.CountryID == t.country && t.country != "" {
			return *a, true
		}
	}
	return game.Army{}, false
}

func (t *Tracker) request(armyID string, target maps.ProvinceID) game.MoveRequest {
	return game.MoveRequest{ArmyID: armyID, CountryID: t.country, Target: target}
}

func sameOwners(a, b maps.Ownership) bool {
	if len(a) != len(b) {
		return false
	}
	for id, c := range a {
		if b[id] != c {
			return false
		}
	}
	return true
}
