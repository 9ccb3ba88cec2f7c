package game

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"world-conquest/pkg/maps"
)

var (
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 255, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	water  = color.NRGBA{R: 40, G: 200, B: 230, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
)

func pid(c color.NRGBA) maps.ProvinceID {
	return maps.NewProvinceID(c, 1)
}

// Helper to build a one-pixel-high strip of provinces:
// red - green - blue - water - yellow.
func createTestWorld(t *testing.T) *maps.World {
	t.Helper()
	strip := []color.NRGBA{red, green, blue, water, yellow}
	img := image.NewNRGBA(image.Rect(0, 0, len(strip), 1))
	for x, c := range strip {
		img.SetNRGBA(x, 0, c)
	}
	w, err := maps.NewWorld("strip", "Strip", img, maps.DefaultOptions())
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	return w
}

// Helper to create a game with two countries, each with one player and one
// army at the given province.
func createTestGameState(t *testing.T, crimsonAt, azureAt maps.ProvinceID) *GameState {
	t.Helper()
	g := NewGame("g1", "Test", "strip", DefaultRules())
	g.AddCountry(Country{ID: "crimson", Name: "Crimson"})
	g.AddCountry(Country{ID: "azure", Name: "Azure"})
	if err := g.AssignCountry("p1", "crimson"); err != nil {
		t.Fatal(err)
	}
	if err := g.AssignCountry("p2", "azure"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddArmy(Army{ID: "a1", CountryID: "crimson", ProvinceID: crimsonAt}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddArmy(Army{ID: "a2", CountryID: "azure", ProvinceID: azureAt}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestApplyMove_Accepted(t *testing.T) {
	w := createTestWorld(t)
	g := createTestGameState(t, pid(red), pid(yellow))

	res, err := g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(blue)}, w)
	if err != nil {
		t.Fatalf("Expected move to be accepted, got %v", err)
	}
	if res.Distance != 2 {
		t.Errorf("Expected distance 2, got %d", res.Distance)
	}
	if res.From != pid(red) {
		t.Errorf("Expected move from red, got %s", res.From)
	}

	a, _ := g.Army("a1")
	if a.ProvinceID != pid(blue) || a.MovesRemaining != 3 {
		t.Errorf("Expected army at blue with 3 moves, got %s with %d", a.ProvinceID, a.MovesRemaining)
	}
}

func TestApplyMove_NotEnoughMoves(t *testing.T) {
	w := createTestWorld(t)
	g := createTestGameState(t, pid(red), pid(yellow))
	g.Armies["a1"].MovesRemaining = 1

	_, err := g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(blue)}, w)
	if !errors.Is(err, ErrNotEnoughMoves) {
		t.Fatalf("Expected ErrNotEnoughMoves, got %v", err)
	}
	if Reason(err) != "Not enough moves remaining" {
		t.Errorf("Unexpected reason %q", Reason(err))
	}
	if err.Error() != "Not enough moves remaining (need 2, have 1)" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	a, _ := g.Army("a1")
	if a.ProvinceID != pid(red) || a.MovesRemaining != 1 {
		t.Error("Rejected move must not change the army")
	}
}

func TestApplyMove_NoMovesRemaining(t *testing.T) {
	w := createTestWorld(t)
	g := createTestGameState(t, pid(red), pid(yellow))
	g.Armies["a1"].MovesRemaining = 0

	for _, target := range []maps.ProvinceID{pid(red), pid(green), pid(yellow), maps.NoProvince} {
		_, err := g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: target}, w)
		if Reason(err) != "Army has no moves remaining" {
			t.Errorf("Target %s: expected no moves remaining, got %v", target, err)
		}
	}
}

func TestApplyMove_RejectionOrder(t *testing.T) {
	w := createTestWorld(t)

	tests := []struct {
		name   string
		req    MoveRequest
		reason string
	}{
		{"unknown army", MoveRequest{ArmyID: "zz", CountryID: "crimson", Target: pid(green)}, "Army not found"},
		{"foreign army", MoveRequest{ArmyID: "a2", CountryID: "crimson", Target: pid(blue)}, "Army does not belong to you"},
		{"observer", MoveRequest{ArmyID: "a1", Target: pid(green)}, "Army does not belong to you"},
		{"unknown target", MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(color.NRGBA{R: 1, A: 255})}, "Target province is unreachable"},
		{"beyond max depth", MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(yellow)}, "Target province is unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := createTestGameState(t, pid(red), pid(yellow))
			g.Rules.MaxMoveDepth = 3
			before := g.Clone()

			_, err := g.ApplyMove(tt.req, w)
			if err == nil {
				t.Fatal("Expected rejection")
			}
			if got := Reason(err); got != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, got)
			}
			var rej *MoveRejection
			if !errors.As(err, &rej) || rej.ArmyID != tt.req.ArmyID {
				t.Errorf("Expected a MoveRejection for %s", tt.req.ArmyID)
			}
			for id, a := range before.Armies {
				if *g.Armies[id] != *a {
					t.Errorf("Army %s changed on a rejected move", id)
				}
			}
		})
	}
}

func TestApplyMove_StayIsFree(t *testing.T) {
	w := createTestWorld(t)
	g := createTestGameState(t, pid(red), pid(yellow))

	res, err := g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(red)}, w)
	if err != nil {
		t.Fatal(err)
	}
	if res.Distance != 0 || res.Army.MovesRemaining != 5 {
		t.Errorf("Expected a free move, got distance %d and %d moves", res.Distance, res.Army.MovesRemaining)
	}
}

func TestApplyMove_Annexes(t *testing.T) {
	w := createTestWorld(t)
	g := createTestGameState(t, pid(red), pid(yellow))
	if err := g.SetOwner(pid(blue), "azure"); err != nil {
		t.Fatal(err)
	}

	res, err := g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(green)}, w)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Annexed {
		t.Error("Expected unowned green to be annexed")
	}
	if owner, _ := g.Owner(pid(green)); owner != "crimson" {
		t.Errorf("Expected crimson to own green, got %q", owner)
	}

	res, _ = g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(blue)}, w)
	if res.Annexed {
		t.Error("Owned provinces are never annexed by moving in")
	}

	res, _ = g.ApplyMove(MoveRequest{ArmyID: "a2", CountryID: "azure", Target: pid(water)}, w)
	if res.Annexed {
		t.Error("Water is never annexed")
	}

	g.Rules.AnnexOnMove = false
	g.Armies["a1"].MovesRemaining = 5
	g.Armies["a1"].ProvinceID = pid(red)
	g.Ownership = maps.Ownership{}
	res, _ = g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(green)}, w)
	if res.Annexed {
		t.Error("Annexing is disabled")
	}
}

func TestValidateMove_Deterministic(t *testing.T) {
	w := createTestWorld(t)
	armies := ArmyMap{"a1": {ID: "a1", CountryID: "crimson", ProvinceID: pid(red), MovesRemaining: 4}}
	req := MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(water)}

	first, d, err := ValidateMove(req, armies, w, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, gd, gerr := ValidateMove(req, armies, w, 10)
		if gerr != nil || got != first || gd != d {
			t.Fatalf("Run %d disagreed: %+v %d %v", i, got, gd, gerr)
		}
	}
	if armies["a1"].ProvinceID != pid(red) {
		t.Error("ValidateMove must not mutate its input")
	}
}

func TestAffordable_AgreesWithValidateMove(t *testing.T) {
	w := createTestWorld(t)
	army := Army{ID: "a1", CountryID: "crimson", ProvinceID: pid(green), MovesRemaining: 2}
	armies := ArmyMap{"a1": army}

	reach := Affordable(army, w.Graph, 10)
	for _, p := range w.Provinces {
		_, _, err := ValidateMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: p.ID}, armies, w, 10)
		_, ok := reach[p.ID]
		if ok != (err == nil) {
			t.Errorf("Province %s: affordable=%v but validate error %v", p.ID, ok, err)
		}
	}
	if len(reach) != 4 {
		t.Errorf("Expected 4 affordable provinces, got %d", len(reach))
	}
}

func TestEndTurn_RotationAndRoundReset(t *testing.T) {
	g := createTestGameState(t, pid(red), pid(yellow))
	g.AddPlayer("watcher")
	g.Armies["a1"].MovesRemaining = 1
	g.Armies["a2"].MovesRemaining = 0

	if g.CurrentPlayerID != "p1" {
		t.Fatalf("Expected p1 to start, got %s", g.CurrentPlayerID)
	}
	if _, err := g.EndTurn("p2"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
	if _, err := g.EndTurn("stranger"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("Expected ErrNotInGame, got %v", err)
	}

	res, err := g.EndTurn("p1")
	if err != nil {
		t.Fatal(err)
	}
	if res.PlayerID != "p2" || res.NewRound || res.Round != 1 {
		t.Errorf("Unexpected first turn result %+v", res)
	}
	if g.Armies["a1"].MovesRemaining != 1 {
		t.Error("Moves must not reset mid-round")
	}

	res, err = g.EndTurn("p2")
	if err != nil {
		t.Fatal(err)
	}
	if res.PlayerID != "p1" || !res.NewRound || res.Round != 2 {
		t.Errorf("Expected wrap to p1 in round 2, got %+v", res)
	}
	for id, a := range g.Armies {
		if a.MovesRemaining != 5 {
			t.Errorf("Army %s has %d moves after the round reset", id, a.MovesRemaining)
		}
	}
	if !g.CurrentDate.Equal(StartDate.AddDate(0, 3, 0)) {
		t.Errorf("Expected the calendar to advance a quarter, got %v", g.CurrentDate)
	}
}

func TestAssignCountry(t *testing.T) {
	g := createTestGameState(t, pid(red), pid(yellow))

	if err := g.AssignCountry("p3", "crimson"); !errors.Is(err, ErrCountryTaken) {
		t.Errorf("Expected ErrCountryTaken, got %v", err)
	}
	if err := g.AssignCountry("p3", "nowhere"); !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("Expected ErrUnknownCountry, got %v", err)
	}

	g.AddCountry(Country{ID: "olive", Name: "Olive"})
	if err := g.AssignCountry("p1", "olive"); err != nil {
		t.Fatal(err)
	}
	if g.Countries["crimson"].PlayerID != "" {
		t.Error("Switching countries must release the old one")
	}
	if len(g.ActivePlayers()) != 2 {
		t.Errorf("Expected 2 active players, got %v", g.ActivePlayers())
	}
}

func TestRemovePlayer_PassesTurn(t *testing.T) {
	g := createTestGameState(t, pid(red), pid(yellow))

	g.RemovePlayer("p1")
	if g.CurrentPlayerID != "p2" {
		t.Errorf("Expected p2 to take over, got %q", g.CurrentPlayerID)
	}
	if g.Countries["crimson"].PlayerID != "" {
		t.Error("Leaving must free the country")
	}
	if g.HasPlayer("p1") {
		t.Error("p1 should be gone")
	}

	g.RemovePlayer("p2")
	if g.CurrentPlayerID != "" {
		t.Errorf("Expected nobody's turn, got %q", g.CurrentPlayerID)
	}
}

func TestRemovePlayer_LastInOrderStartsRound(t *testing.T) {
	w := createTestWorld(t)
	g := createTestGameState(t, pid(red), pid(yellow))

	if _, err := g.ApplyMove(MoveRequest{ArmyID: "a1", CountryID: "crimson", Target: pid(blue)}, w); err != nil {
		t.Fatal(err)
	}
	if _, err := g.EndTurn("p1"); err != nil {
		t.Fatal(err)
	}

	g.RemovePlayer("p2")
	if g.CurrentPlayerID != "p1" {
		t.Fatalf("Expected p1 to take over, got %q", g.CurrentPlayerID)
	}
	if g.Round != 2 {
		t.Errorf("Expected round 2 after play wrapped, got %d", g.Round)
	}
	if a, _ := g.Army("a1"); a.MovesRemaining != 5 {
		t.Errorf("Expected moves reset to 5, got %d", a.MovesRemaining)
	}
	if !g.CurrentDate.Equal(StartDate.AddDate(0, 3, 0)) {
		t.Errorf("Expected the calendar to advance a quarter, got %v", g.CurrentDate)
	}

	// Leaving out of turn does not touch the round.
	g2 := createTestGameState(t, pid(red), pid(yellow))
	g2.RemovePlayer("p2")
	if g2.Round != 1 || g2.CurrentPlayerID != "p1" {
		t.Errorf("Expected round 1 with p1 to play, got round %d with %q", g2.Round, g2.CurrentPlayerID)
	}
}

func TestScenarioApply(t *testing.T) {
	w := createTestWorld(t)
	g := NewGame("g1", "Test", "strip", DefaultRules())
	s := Scenario{Countries: []CountrySetup{
		{ID: "crimson", Name: "Crimson", Provinces: []string{"255_0_0", "0_255_0"},
			Armies: []ArmySetup{{ID: "c1", General: "Ney", Province: "255_0_0"}}},
		{ID: "azure", Name: "Azure", Provinces: []string{"255_255_0"}},
	}}

	if err := s.Apply(g, w); err != nil {
		t.Fatal(err)
	}
	if owner, _ := g.Owner(pid(green)); owner != "crimson" {
		t.Errorf("Expected crimson to own green, got %q", owner)
	}
	a, ok := g.Army("c1")
	if !ok || a.MovesRemaining != 5 || a.GeneralName != "Ney" {
		t.Errorf("Unexpected army %+v", a)
	}

	bad := Scenario{Countries: []CountrySetup{{ID: "x", Provinces: []string{"1_2_3"}}}}
	if err := bad.Apply(NewGame("g2", "Bad", "strip", DefaultRules()), w); !errors.Is(err, ErrUnknownProvince) {
		t.Errorf("Expected ErrUnknownProvince, got %v", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	g := createTestGameState(t, pid(red), pid(yellow))
	c := g.Clone()
	c.Armies["a1"].MovesRemaining = 0
	c.Ownership[pid(red)] = "azure"
	c.Countries["crimson"].PlayerID = ""

	if g.Armies["a1"].MovesRemaining != 5 {
		t.Error("Clone shares armies")
	}
	if _, owned := g.Owner(pid(red)); owned {
		t.Error("Clone shares ownership")
	}
	if g.Countries["crimson"].PlayerID != "p1" {
		t.Error("Clone shares countries")
	}
}

func TestPalette_CountryColours(t *testing.T) {
	g := NewGame("g1", "Test", "strip", DefaultRules())
	g.AddCountry(Country{ID: "crimson", Color: "#b8302c"})
	g.AddCountry(Country{ID: "azure", Color: "blue-ish"})

	pal := g.Palette()
	if got, want := pal.Countries["crimson"], (color.NRGBA{R: 0xb8, G: 0x30, B: 0x2c, A: 255}); got != want {
		t.Errorf("crimson = %v, want %v", got, want)
	}
	if _, ok := pal.Countries["azure"]; ok {
		t.Error("an unparsable colour should fall back to unowned")
	}
	if pal.Water != maps.DefaultPalette().Water {
		t.Error("stock colours should be kept")
	}
}
