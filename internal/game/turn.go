package game

// TurnResult describes the state after a turn ends.
type TurnResult struct {
	PlayerID string `json:"player_id"`
	Round    int    `json:"round"`
	NewRound bool   `json:"new_round"`
}

// ActivePlayers returns the players that control a country, in join order.
// Only they take turns.
func (g *GameState) ActivePlayers() []string {
	active := make([]string, 0, len(g.PlayerCountries))
	for _, id := range g.Players {
		if _, ok := g.PlayerCountries[id]; ok {
			active = append(active, id)
		}
	}
	return active
}

// EndTurn passes play to the next active player. When play wraps back to
// the first player a new round starts: the calendar advances a quarter and
// every army's moves are reset.
func (g *GameState) EndTurn(playerID string) (TurnResult, error) {
	if !g.HasPlayer(playerID) {
		return TurnResult{}, ErrNotInGame
	}
	if g.CurrentPlayerID != playerID {
		return TurnResult{}, ErrNotYourTurn
	}

	active := g.ActivePlayers()
	if len(active) == 0 {
		return TurnResult{PlayerID: g.CurrentPlayerID, Round: g.Round}, nil
	}

	idx := indexOf(active, playerID)
	if idx < 0 {
		g.CurrentPlayerID = active[0]
		return TurnResult{PlayerID: g.CurrentPlayerID, Round: g.Round}, nil
	}

	next := (idx + 1) % len(active)
	g.CurrentPlayerID = active[next]
	res := TurnResult{PlayerID: g.CurrentPlayerID}
	if next == 0 {
		g.startRound()
		res.NewRound = true
	}
	res.Round = g.Round
	return res, nil
}

func (g *GameState) startRound() {
	g.Round++
	g.CurrentDate = g.CurrentDate.AddDate(0, 3, 0)
	for _, a := range g.Armies {
		a.MovesRemaining = g.Rules.MovesPerRound
	}
}

// nextAfter returns the active player after playerID, or "" if none remain.
func (g *GameState) nextAfter(playerID string) string {
	active := g.ActivePlayers()
	idx := indexOf(active, playerID)
	for i := 1; i <= len(active); i++ {
		cand := active[(idx+i+len(active))%len(active)]
		if cand != playerID {
			return cand
		}
	}
	return ""
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
