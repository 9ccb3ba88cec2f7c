package game

import (
	"fmt"

	"world-conquest/pkg/maps"
)

// Scenario is the starting setup of a game: countries, their provinces and
// their armies. Province IDs use the "r_g_b" text form.
type Scenario struct {
	Countries []CountrySetup `json:"countries" yaml:"countries"`
}

// CountrySetup seeds one country.
type CountrySetup struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Color     string      `json:"color" yaml:"color"`
	Provinces []string    `json:"provinces" yaml:"provinces"`
	Armies    []ArmySetup `json:"armies" yaml:"armies"`
}

// ArmySetup seeds one army.
type ArmySetup struct {
	ID       string `json:"id" yaml:"id"`
	General  string `json:"general" yaml:"general"`
	Province string `json:"province" yaml:"province"`
}

// Apply seeds g with the scenario. Every province must exist in geo.
func (s Scenario) Apply(g *GameState, geo Geography) error {
	for _, cs := range s.Countries {
		g.AddCountry(Country{ID: maps.CountryID(cs.ID), Name: cs.Name, Color: cs.Color})
	}

	for _, cs := range s.Countries {
		country := maps.CountryID(cs.ID)
		for _, ps := range cs.Provinces {
			id, err := provinceIn(geo, ps)
			if err != nil {
				return fmt.Errorf("country %s: %w", cs.ID, err)
			}
			if err := g.SetOwner(id, country); err != nil {
				return err
			}
		}
		for _, as := range cs.Armies {
			id, err := provinceIn(geo, as.Province)
			if err != nil {
				return fmt.Errorf("army %s: %w", as.ID, err)
			}
			err = g.AddArmy(Army{
				ID:          as.ID,
				CountryID:   country,
				GeneralName: as.General,
				ProvinceID:  id,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func provinceIn(geo Geography, s string) (maps.ProvinceID, error) {
	id, err := maps.ParseProvinceID(s)
	if err != nil {
		return maps.NoProvince, err
	}
	if geo.Province(id) == nil {
		return maps.NoProvince, fmt.Errorf("%w: %s", ErrUnknownProvince, s)
	}
	return id, nil
}
