package engine

// Duel picks the victim when two opposing pieces touch. A flying piece beats
// a resting one; between two flying pieces the higher one wins, and White
// takes an exact tie. The result does not depend on argument order. It
// returns nil when neither piece is moving.
func Duel(a, b *Piece) *Piece {
	w, k := a, b
	if a.Side != White {
		w, k = b, a
	}
	wm, km := w.Mode == Moving, k.Mode == Moving
	switch {
	case !wm && !km:
		return nil
	case wm && !km:
		return k
	case km && !wm:
		return w
	case w.Pos.Y >= k.Pos.Y:
		return k
	default:
		return w
	}
}

func touching(a, b *Piece, r Rules) bool {
	return a.Pos.Planar(b.Pos) < r.CaptureRadius
}

type capture struct {
	victim, by PieceID
}

// collide tests every white/black pair with at least one piece in flight and
// kills losers, in arena order. It stops at the first king taken.
func (g *Game) collide() (caps []capture, kingTaken bool) {
	whites, blacks := g.arena.IDs(White), g.arena.IDs(Black)
	for _, wid := range whites {
		for _, bid := range blacks {
			w, _ := g.arena.Get(wid)
			b, _ := g.arena.Get(bid)
			if !w.Alive {
				break
			}
			if !b.Alive {
				continue
			}
			if w.Mode != Moving && b.Mode != Moving {
				continue
			}
			if !touching(w, b, g.rules) {
				continue
			}

			victim := Duel(w, b)
			c := capture{victim: bid, by: wid}
			if victim == w {
				c = capture{victim: wid, by: bid}
			}
			victim.Kill()
			caps = append(caps, c)
			if victim.Kind == King {
				return caps, true
			}
		}
	}
	return caps, false
}
