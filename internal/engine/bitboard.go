package engine

import "math/bits"

// Bitboard is a set of squares, bit index rank*8+file.
type Bitboard uint64

func BB(sq Square) Bitboard { return 1 << sq.index() }

func (b Bitboard) Empty() bool { return b == 0 }

func (b Bitboard) Has(sq Square) bool {
	if !sq.Valid() {
		return false
	}
	return b&BB(sq) != 0
}

func (b Bitboard) Add(sq Square) Bitboard { return b | BB(sq) }

func (b Bitboard) Remove(sq Square) Bitboard { return b &^ BB(sq) }

func (b Bitboard) Count() int { return bits.OnesCount64(uint64(b)) }

// Squares lists members in a1, b1, ..., h8 order.
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.Count())
	for bb := uint64(b); bb != 0; bb &= bb - 1 {
		idx := bits.TrailingZeros64(bb)
		out = append(out, Square{File: idx % 8, Rank: idx / 8})
	}
	return out
}
