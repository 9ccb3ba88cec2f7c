package protocol

import (
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-conquest/internal/game"
	"world-conquest/pkg/maps"
)

func TestMoveArmyWireFormat(t *testing.T) {
	raw := []byte(`{"type":"move_army","id":"x","timestamp":1,
		"payload":{"army_id":"crimson-1","target_province_id":"150_90_150"}}`)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, TypeMoveArmy, msg.Type)

	var p MoveArmyPayload
	require.NoError(t, msg.ParsePayload(&p))
	assert.Equal(t, "crimson-1", p.ArmyID)
	assert.Equal(t, maps.NewProvinceID(color.NRGBA{R: 150, G: 90, B: 150, A: 255}, 1), p.TargetProvinceID)

	var bad MoveArmyPayload
	msg.Payload = json.RawMessage(`{"target_province_id":"not_an_id"}`)
	assert.Error(t, msg.ParsePayload(&bad))
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypeMoveInvalid, MoveInvalidPayload{ArmyID: "a1", Reason: "Army not found"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.NotZero(t, msg.Timestamp)
	assert.JSONEq(t, `{"army_id":"a1","reason":"Army not found"}`, string(msg.Payload))
}

func TestNewGameStatePayload(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	w, err := maps.NewWorld("pair", "Pair", img, maps.DefaultOptions())
	require.NoError(t, err)

	g := game.NewGame("g1", "Test", w.ID, game.DefaultRules())
	s := game.Scenario{Countries: []game.CountrySetup{
		{ID: "zulu", Provinces: []string{"0_255_0"}, Armies: []game.ArmySetup{{ID: "z1", Province: "0_255_0"}}},
		{ID: "alpha", Provinces: []string{"255_0_0"}, Armies: []game.ArmySetup{{ID: "a1", Province: "255_0_0"}}},
	}}
	require.NoError(t, s.Apply(g, w))

	p := NewGameStatePayload(g, 7)
	require.Len(t, p.Countries, 2)
	assert.Equal(t, maps.CountryID("alpha"), p.Countries[0].ID)
	assert.Equal(t, "a1", p.Armies[0].ID)
	assert.Equal(t, int64(7), p.DerivedVersion)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ownership":{"0_255_0":"zulu","255_0_0":"alpha"}`)

	var back GameStatePayload
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Ownership, back.Ownership)

	g.AddPlayer("observer-1")
	require.NoError(t, g.AssignCountry("p1", "alpha"))
	g.Armies["a1"].MovesRemaining = 2
	back2 := NewGameStatePayload(g, 8).State()
	assert.Equal(t, g.Ownership, back2.Ownership)
	assert.Equal(t, 2, back2.Armies["a1"].MovesRemaining, "moves are copied, not reset")
	assert.Equal(t, "p1", back2.CurrentPlayerID)
	assert.Equal(t, []string{"p1"}, back2.Players, "observers are not sent")
	assert.Equal(t, "p1", back2.Countries["alpha"].PlayerID)

	mp := NewMapPayload(w)
	require.Len(t, mp.Provinces, 2)
	assert.Equal(t, []maps.ProvinceID{mp.Provinces[1].ID}, mp.Provinces[0].Neighbors)
	assert.Equal(t, [4]int{0, 0, 1, 1}, mp.Provinces[0].Bounds)
}
