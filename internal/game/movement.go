package game

import (
	"fmt"

	"world-conquest/pkg/maps"
)

// DistanceOracle answers bounded hop-count queries between provinces.
// *maps.World and *maps.Graph both satisfy it.
type DistanceOracle interface {
	Distance(from, to maps.ProvinceID, maxDepth int) int
}

// MoveRequest is an order to move one army. CountryID is the country of the
// player issuing it; empty for observers.
type MoveRequest struct {
	ArmyID    string
	CountryID maps.CountryID
	Target    maps.ProvinceID
}

// ValidateMove decides a move order without touching any state. On success
// it returns the army as it would be after the move and the distance paid.
// The server and client prediction both call this with the same
// maxMoveDepth, so they always agree.
func ValidateMove(req MoveRequest, armies ArmyLookup, dist DistanceOracle, maxMoveDepth int) (Army, int, error) {
	army, ok := armies.Army(req.ArmyID)
	if !ok {
		return Army{}, 0, reject(ErrArmyNotFound, req.ArmyID, "")
	}
	if req.CountryID == "" || army.CountryID != req.CountryID {
		return Army{}, 0, reject(ErrArmyNotOwned, req.ArmyID, "")
	}
	if army.MovesRemaining <= 0 {
		return Army{}, 0, reject(ErrNoMovesRemaining, req.ArmyID, "")
	}

	d := dist.Distance(army.ProvinceID, req.Target, maxMoveDepth)
	if d == maps.Unreachable {
		return Army{}, 0, reject(ErrUnreachable, req.ArmyID, "")
	}
	if d > army.MovesRemaining {
		detail := fmt.Sprintf("need %d, have %d", d, army.MovesRemaining)
		return Army{}, 0, reject(ErrNotEnoughMoves, req.ArmyID, detail)
	}

	army.ProvinceID = req.Target
	army.MovesRemaining -= d
	return army, d, nil
}

// Affordable returns every province the army could move to right now, with
// its cost. It agrees with ValidateMove for each entry.
func Affordable(army Army, graph *maps.Graph, maxMoveDepth int) map[maps.ProvinceID]int {
	if army.MovesRemaining <= 0 {
		return nil
	}
	return graph.Reachable(army.ProvinceID, min(maxMoveDepth, army.MovesRemaining))
}
