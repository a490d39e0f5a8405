package engine

import (
	"errors"
	"fmt"
)

var ErrBadSquare = errors.New("bad square")
var ErrNoPiece = errors.New("no piece at origin")
var ErrNotYourPiece = errors.New("piece belongs to the other side")
var ErrCoolingDown = errors.New("piece is cooling down")
var ErrIllegalMove = errors.New("illegal move")

type Kind int8

const (
	Pawn Kind = iota + 1
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "unknown"
	}
}

// Side doubles as the flip multiplier: +1 for white, -1 for black.
type Side int8

const (
	White Side = 1
	Black Side = -1
)

func (s Side) String() string {
	switch s {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

func (s Side) Opponent() Side { return -s }

func (s Side) index() int {
	if s == Black {
		return 1
	}
	return 0
}

func ParseSide(s string) (Side, bool) {
	switch s {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return 0, false
	}
}

type Mode uint8

const (
	Idle Mode = iota
	Moving
	Eaten
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Eaten:
		return "eaten"
	default:
		return "unknown"
	}
}

// Square holds zero-based coordinates; "a1" is {0, 0}.
type Square struct {
	File int
	Rank int
}

func ParseSquare(label string) (Square, error) {
	if len(label) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrBadSquare, label)
	}
	sq := Square{File: int(label[0]) - 'a', Rank: int(label[1]) - '1'}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("%w: %q", ErrBadSquare, label)
	}
	return sq, nil
}

func MustSquare(label string) Square {
	sq, err := ParseSquare(label)
	if err != nil {
		panic(err)
	}
	return sq
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File <= 7 && s.Rank >= 0 && s.Rank <= 7
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File), byte('1' + s.Rank)})
}

func (s Square) Offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

func (s Square) index() int { return s.Rank*8 + s.File }

type Source uint8

const (
	SourceLocal Source = iota
	SourceRemote
)

type MoveRequest struct {
	From   Square
	To     Square
	At     float64
	Source Source
}

type EventType string

const (
	EvtLanded   EventType = "Landed"
	EvtCaptured EventType = "Captured"
	EvtGameOver EventType = "GameOver"
	EvtReset    EventType = "Reset"
)

type Event struct {
	Type   EventType
	Piece  PieceID
	Kind   Kind
	Side   Side
	Square Square
	By     PieceID
	Winner Side
}
