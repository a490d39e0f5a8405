package engine

import "github.com/yohamta/donburi"

// PieceID is stable for the lifetime of a game; eaten pieces keep theirs.
type PieceID = donburi.Entity

var pieceComponent = donburi.NewComponentType[Piece]()

// Arena owns every piece of one game. Iteration follows insertion order so
// both peers walk pieces identically.
type Arena struct {
	world donburi.World
	order []donburi.Entity
}

func NewArena() *Arena {
	return &Arena{world: donburi.NewWorld()}
}

func (a *Arena) Add(p Piece) PieceID {
	e := a.world.Create(pieceComponent)
	pieceComponent.Set(a.world.Entry(e), &p)
	a.order = append(a.order, e)
	return e
}

// Get returns a pointer into the arena. Do not hold it across Add.
func (a *Arena) Get(id PieceID) (*Piece, bool) {
	if !a.world.Valid(id) {
		return nil, false
	}
	return pieceComponent.Get(a.world.Entry(id)), true
}

func (a *Arena) Each(fn func(id PieceID, p *Piece)) {
	for _, e := range a.order {
		if !a.world.Valid(e) {
			continue
		}
		fn(e, pieceComponent.Get(a.world.Entry(e)))
	}
}

// IDs returns the ids of one side in insertion order.
func (a *Arena) IDs(s Side) []PieceID {
	var out []PieceID
	a.Each(func(id PieceID, p *Piece) {
		if p.Side == s {
			out = append(out, id)
		}
	})
	return out
}

func (a *Arena) Len() int { return len(a.order) }
