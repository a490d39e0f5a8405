package engine

// Click feeds one square pick from the local player. The first pick selects
// a resting piece of our side that is ready to move; picking it again drops
// the selection; any other square turns the pair into a move request. The
// request is returned for the caller to submit, the engine does not apply it.
func (g *Game) Click(sq Square, t float64) (MoveRequest, bool) {
	if !sq.Valid() {
		return MoveRequest{}, false
	}

	if !g.hasSelected {
		_, p, ok := g.restingAt(sq)
		if !ok || p.Side != g.side || p.Cooldown > 0 {
			return MoveRequest{}, false
		}
		g.selected, g.hasSelected = sq, true
		return MoveRequest{}, false
	}

	from := g.selected
	g.hasSelected = false
	if from == sq {
		return MoveRequest{}, false
	}
	return MoveRequest{From: from, To: sq, At: t, Source: SourceLocal}, true
}

// Selection is the square picked by the first Click, if any.
func (g *Game) Selection() (Square, bool) {
	return g.selected, g.hasSelected
}
