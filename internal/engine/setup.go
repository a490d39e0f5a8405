package engine

import "github.com/notnil/chess"

type Placement struct {
	Kind   Kind
	Side   Side
	Square Square
}

var chessKinds = map[chess.PieceType]Kind{
	chess.Pawn:   Pawn,
	chess.Knight: Knight,
	chess.Bishop: Bishop,
	chess.Rook:   Rook,
	chess.Queen:  Queen,
	chess.King:   King,
}

// StartingPlacements lists the standard opening layout, white first, each
// side in a1..h8 order.
func StartingPlacements() []Placement {
	squares := chess.NewGame().Position().Board().SquareMap()

	out := make([]Placement, 0, len(squares))
	for _, c := range []chess.Color{chess.White, chess.Black} {
		for i := 0; i < 64; i++ {
			p, ok := squares[chess.Square(i)]
			if !ok || p.Color() != c {
				continue
			}
			side := White
			if c == chess.Black {
				side = Black
			}
			out = append(out, Placement{
				Kind:   chessKinds[p.Type()],
				Side:   side,
				Square: Square{File: i % 8, Rank: i / 8},
			})
		}
	}
	return out
}

func pawnStartRank(s Side) int {
	if s == White {
		return 1
	}
	return 6
}
