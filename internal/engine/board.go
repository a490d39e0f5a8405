package engine

import (
	"strings"

	"github.com/notnil/chess"
)

// Board is the logical occupancy map, indexed [file][rank]. A cell holds
// kind*side: 0 is empty, positive white, negative black. Only resting pieces
// are written; a square is vacated the moment a move out of it is accepted.
type Board [8][8]int8

func code(k Kind, s Side) int8 { return int8(k) * int8(s) }

func decode(c int8) (Kind, Side, bool) {
	switch {
	case c > 0:
		return Kind(c), White, true
	case c < 0:
		return Kind(-c), Black, true
	default:
		return 0, 0, false
	}
}

func (b Board) At(sq Square) int8 {
	if !sq.Valid() {
		return 0
	}
	return b[sq.File][sq.Rank]
}

func (b *Board) Set(sq Square, k Kind, s Side) {
	if !sq.Valid() {
		return
	}
	b[sq.File][sq.Rank] = code(k, s)
}

func (b *Board) Clear(sq Square) {
	if !sq.Valid() {
		return
	}
	b[sq.File][sq.Rank] = 0
}

// Piece reports the occupant of sq, if any.
func (b Board) Piece(sq Square) (Kind, Side, bool) {
	return decode(b.At(sq))
}

func (b Board) Count() int {
	n := 0
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			if b[f][r] != 0 {
				n++
			}
		}
	}
	return n
}

var chessPieces = map[int8]chess.Piece{
	code(Pawn, White):   chess.WhitePawn,
	code(Knight, White): chess.WhiteKnight,
	code(Bishop, White): chess.WhiteBishop,
	code(Rook, White):   chess.WhiteRook,
	code(Queen, White):  chess.WhiteQueen,
	code(King, White):   chess.WhiteKing,
	code(Pawn, Black):   chess.BlackPawn,
	code(Knight, Black): chess.BlackKnight,
	code(Bishop, Black): chess.BlackBishop,
	code(Rook, Black):   chess.BlackRook,
	code(Queen, Black):  chess.BlackQueen,
	code(King, Black):   chess.BlackKing,
}

// FEN renders the piece placement field. Two peers that agree on occupancy
// produce the same string, which makes it a cheap divergence check in logs.
func (b Board) FEN() string {
	m := make(map[chess.Square]chess.Piece)
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			if p, ok := chessPieces[b[f][r]]; ok {
				m[chess.Square(r*8+f)] = p
			}
		}
	}
	return chess.NewBoard(m).String()
}

var letters = map[Kind]byte{Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'}

// Letter is the FEN letter of a cell value, '.' when empty.
func Letter(c int8) byte {
	k, s, ok := decode(c)
	if !ok {
		return '.'
	}
	l := letters[k]
	if s == White {
		l -= 'a' - 'A'
	}
	return l
}

// String draws rank 8 at the top.
func (b Board) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			sb.WriteByte(Letter(b[f][r]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
