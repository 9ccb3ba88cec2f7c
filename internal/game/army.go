package game

import "world-conquest/pkg/maps"

// Army is a movable force stationed in one province.
type Army struct {
	ID             string          `json:"id"`
	CountryID      maps.CountryID  `json:"country_id"`
	GeneralName    string          `json:"general_name,omitempty"`
	ProvinceID     maps.ProvinceID `json:"province_id"`
	MovesRemaining int             `json:"moves_remaining"`
}

// Country is a playable nation. PlayerID is empty while nobody controls it.
type Country struct {
	ID       maps.CountryID `json:"id"`
	Name     string         `json:"name"`
	Color    string         `json:"color"`
	PlayerID string         `json:"player_id,omitempty"`
}

// ArmyLookup resolves armies by ID.
type ArmyLookup interface {
	Army(id string) (Army, bool)
}

// ArmyMap is an ArmyLookup over plain records, used by client prediction.
type ArmyMap map[string]Army

// Army implements ArmyLookup.
func (m ArmyMap) Army(id string) (Army, bool) {
	a, ok := m[id]
	return a, ok
}
