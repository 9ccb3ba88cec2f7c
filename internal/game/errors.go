package game

import (
	"errors"
	"fmt"
)

// Move rejections. Each maps to the reason string shown to players.
var (
	ErrArmyNotFound     = errors.New("army not found")
	ErrArmyNotOwned     = errors.New("army does not belong to you")
	ErrNoMovesRemaining = errors.New("army has no moves remaining")
	ErrUnreachable      = errors.New("target province is unreachable")
	ErrNotEnoughMoves   = errors.New("not enough moves remaining")
)

// Game errors
var (
	ErrNotYourTurn     = errors.New("not your turn")
	ErrUnknownCountry  = errors.New("unknown country")
	ErrUnknownProvince = errors.New("unknown province")
	ErrCountryTaken    = errors.New("country already has a player")
	ErrDuplicateArmy   = errors.New("army already exists")
	ErrNotInGame       = errors.New("player is not in this game")
)

var reasons = map[error]string{
	ErrArmyNotFound:     "Army not found",
	ErrArmyNotOwned:     "Army does not belong to you",
	ErrNoMovesRemaining: "Army has no moves remaining",
	ErrUnreachable:      "Target province is unreachable",
	ErrNotEnoughMoves:   "Not enough moves remaining",
}

// MoveRejection is the expected, user-facing outcome of an invalid move.
// It unwraps to one of the move sentinels above.
type MoveRejection struct {
	Err    error
	ArmyID string
	Detail string
}

func (r *MoveRejection) Error() string {
	if r.Detail != "" {
		return fmt.Sprintf("%s (%s)", r.Reason(), r.Detail)
	}
	return r.Reason()
}

func (r *MoveRejection) Unwrap() error {
	return r.Err
}

// Reason is the machine-readable reason string.
func (r *MoveRejection) Reason() string {
	if s, ok := reasons[r.Err]; ok {
		return s
	}
	return r.Err.Error()
}

func reject(sentinel error, armyID, detail string) error {
	return &MoveRejection{Err: sentinel, ArmyID: armyID, Detail: detail}
}

// Reason returns the reason string for a move rejection, or "" when err is
// not one.
func Reason(err error) string {
	var r *MoveRejection
	if errors.As(err, &r) {
		return r.Reason()
	}
	for sentinel, s := range reasons {
		if errors.Is(err, sentinel) {
			return s
		}
	}
	return ""
}
