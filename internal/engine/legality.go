package engine

// Position is what move generation reads: the logical board plus, per side,
// the logical squares of every piece still in play. A claimed square that is
// empty on the board belongs to a piece in flight toward it.
type Position struct {
	Board  Board
	Claims [2]Bitboard
}

func (pos *Position) claimed(s Side, sq Square) bool {
	return pos.Claims[s.index()].Has(sq)
}

// open reports whether side s may finish a move on sq: it is not held by one
// of its own resting pieces and no own piece is already headed there.
func (pos *Position) open(s Side, sq Square) bool {
	if !sq.Valid() {
		return false
	}
	if _, owner, ok := pos.Board.Piece(sq); ok && owner == s {
		return false
	}
	return !pos.claimed(s, sq)
}

var (
	knightJumps = [][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingSteps   = [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonals   = [][2]int{{-1, -1}, {1, 1}, {-1, 1}, {1, -1}}
	orthogonals = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// Destinations is the set of squares p may be sent to. Pieces that are in
// flight or eaten have none.
func Destinations(pos *Position, p Piece) Bitboard {
	if !p.Alive || p.Mode != Idle || !p.Square.Valid() {
		return 0
	}
	switch p.Kind {
	case Pawn:
		return pawnMoves(pos, p)
	case Knight:
		return steps(pos, p, knightJumps)
	case Bishop:
		return rays(pos, p, diagonals)
	case Rook:
		return rays(pos, p, orthogonals)
	case Queen:
		return rays(pos, p, orthogonals) | rays(pos, p, diagonals)
	case King:
		return steps(pos, p, kingSteps)
	default:
		return 0
	}
}

func IsLegal(pos *Position, p Piece, to Square) bool {
	return Destinations(pos, p).Has(to)
}

func pawnMoves(pos *Position, p Piece) Bitboard {
	var bb Bitboard
	dir := int(p.Side)

	one := p.Square.Offset(0, dir)
	if one.Valid() && pos.Board.At(one) == 0 && !pos.claimed(p.Side, one) {
		bb = bb.Add(one)
		if p.Square.Rank == pawnStartRank(p.Side) {
			two := p.Square.Offset(0, 2*dir)
			if pos.Board.At(two) == 0 && !pos.claimed(p.Side, two) {
				bb = bb.Add(two)
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		sq := p.Square.Offset(df, dir)
		if !sq.Valid() {
			continue
		}
		if _, owner, ok := pos.Board.Piece(sq); ok && owner != p.Side && !pos.claimed(p.Side, sq) {
			bb = bb.Add(sq)
		}
	}
	return bb
}

func steps(pos *Position, p Piece, offsets [][2]int) Bitboard {
	var bb Bitboard
	for _, d := range offsets {
		sq := p.Square.Offset(d[0], d[1])
		if pos.open(p.Side, sq) {
			bb = bb.Add(sq)
		}
	}
	return bb
}

// rays walks each direction until the edge or the first resting piece. An
// enemy there is included, a friend is not.
func rays(pos *Position, p Piece, dirs [][2]int) Bitboard {
	var bb Bitboard
	for _, d := range dirs {
		for sq := p.Square.Offset(d[0], d[1]); sq.Valid(); sq = sq.Offset(d[0], d[1]) {
			_, owner, occupied := pos.Board.Piece(sq)
			if occupied && owner == p.Side {
				break
			}
			if !pos.claimed(p.Side, sq) {
				bb = bb.Add(sq)
			}
			if occupied {
				break
			}
		}
	}
	return bb
}
