package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-conquest/internal/game"
	"world-conquest/pkg/maps"
)

func mustID(t *testing.T, s string) maps.ProvinceID {
	t.Helper()
	id, err := maps.ParseProvinceID(s)
	require.NoError(t, err)
	return id
}

func newTestSession(t *testing.T, id string) *Session {
	t.Helper()
	w, err := maps.LoadEmbedded(maps.DefaultMapID, maps.DefaultOptions())
	require.NoError(t, err)

	scenario := game.Scenario{Countries: []game.CountrySetup{
		{ID: "crimson", Color: "#b8302c",
			Provinces: []string{"170_60_60", "200_120_60", "220_150_150"},
			Armies:    []game.ArmySetup{{ID: "crimson-1", Province: "170_60_60"}}},
		{ID: "azure", Color: "#2f5fa8",
			Provinces: []string{"70_130_90", "90_60_40", "60_90_140"},
			Armies:    []game.ArmySetup{{ID: "azure-1", Province: "70_130_90"}}},
	}}
	state := game.NewGame(id, "Test", w.ID, game.DefaultRules())
	require.NoError(t, scenario.Apply(state, w))

	s := New(w, state, nil)
	require.NoError(t, s.Join("p1", "crimson"))
	require.NoError(t, s.Join("p2", "azure"))
	require.NoError(t, s.Join("p3", Observer))
	return s
}

func TestNew_PublishesDerived(t *testing.T) {
	s := newTestSession(t, "g1")
	d := s.Derived()
	require.NotNil(t, d)

	assert.Equal(t, int64(1), d.Version)
	assert.Len(t, d.Groups, 3, "crimson is split in two, azure is one block")
	assert.NotEmpty(t, d.Borders)
	require.NotNil(t, d.Image)
	assert.Equal(t, s.World().Width, d.Image.Bounds().Dx())
}

func TestMoveArmy_AnnexRepublishes(t *testing.T) {
	s := newTestSession(t, "g1")
	before := s.Derived()

	res, err := s.MoveArmy("p1", "crimson-1", mustID(t, "150_90_150"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Distance)
	assert.True(t, res.Annexed)

	after := s.Derived()
	assert.Equal(t, int64(2), after.Version)
	assert.Len(t, after.Groups, 2, "the annexed province joins crimson's holdings")

	assert.Equal(t, int64(1), before.Version, "published views are never modified")
	assert.Len(t, before.Groups, 3)
}

func TestMoveArmy_RejectedLeavesStateAlone(t *testing.T) {
	s := newTestSession(t, "g1")
	snap := s.Snapshot()

	_, err := s.MoveArmy("p3", "crimson-1", mustID(t, "200_120_60"))
	assert.ErrorIs(t, err, game.ErrArmyNotOwned)

	_, err = s.MoveArmy("p2", "crimson-1", mustID(t, "200_120_60"))
	assert.ErrorIs(t, err, game.ErrArmyNotOwned)

	_, err = s.MoveArmy("p1", "ghost", mustID(t, "200_120_60"))
	assert.ErrorIs(t, err, game.ErrArmyNotFound)

	assert.Equal(t, snap, s.Snapshot())
	assert.Equal(t, int64(1), s.Derived().Version)
}

func TestMoveArmy_ConcurrentArmies(t *testing.T) {
	s := newTestSession(t, "g1")
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		_, err := s.MoveArmy("p1", "crimson-1", mustID(t, "200_120_60"))
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := s.MoveArmy("p2", "azure-1", mustID(t, "90_60_40"))
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			d := s.Derived()
			assert.NotNil(t, d.Image)
			_ = s.Snapshot()
		}
	}()
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, mustID(t, "200_120_60"), snap.Armies["crimson-1"].ProvinceID)
	assert.Equal(t, 4, snap.Armies["crimson-1"].MovesRemaining)
	assert.Equal(t, mustID(t, "90_60_40"), snap.Armies["azure-1"].ProvinceID)
	assert.Equal(t, 4, snap.Armies["azure-1"].MovesRemaining)
}

func TestSetOwner(t *testing.T) {
	s := newTestSession(t, "g1")

	err := s.SetOwner(maps.NoProvince, "crimson")
	assert.ErrorIs(t, err, game.ErrUnknownProvince)

	err = s.SetOwner(mustID(t, "150_90_150"), "nobody")
	assert.ErrorIs(t, err, game.ErrUnknownCountry)
	assert.Equal(t, int64(1), s.Derived().Version)

	require.NoError(t, s.SetOwner(mustID(t, "150_90_150"), "crimson"))
	assert.Equal(t, int64(2), s.Derived().Version)
	assert.Len(t, s.Derived().Groups, 2)

	require.NoError(t, s.SetOwner(mustID(t, "150_90_150"), ""))
	assert.Len(t, s.Derived().Groups, 3)
}

func TestEndTurnAndLeave(t *testing.T) {
	s := newTestSession(t, "g1")

	_, err := s.EndTurn("p2")
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	res, err := s.EndTurn("p1")
	require.NoError(t, err)
	assert.Equal(t, "p2", res.PlayerID)

	assert.True(t, s.Leave("p2"))
	assert.Equal(t, "p1", s.Snapshot().CurrentPlayerID)
	assert.True(t, s.Leave("p1"))
	assert.False(t, s.Leave("p3"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := newTestSession(t, "b-game")
	b := newTestSession(t, "a-game")
	r.Add(a)
	r.Add(b)

	got, ok := r.Get("b-game")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, []string{"a-game", "b-game"}, r.IDs())

	found, ok := r.FindByPlayer("p3")
	require.True(t, ok)
	assert.Same(t, b, found, "first game in id order")
	_, ok = r.FindByPlayer("stranger")
	assert.False(t, ok)

	r.Remove("a-game")
	_, ok = r.Get("a-game")
	assert.False(t, ok)
	assert.Equal(t, []string{"b-game"}, r.IDs())
}
