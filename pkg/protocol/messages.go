package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformed = errors.New("malformed frame")
var ErrUnknownType = errors.New("unknown message type")
var ErrBadArgs = errors.New("bad message args")

type Type int

const (
	TypePing Type = 0
	TypeMove Type = 1
)

func (t Type) String() string {
	switch t {
	case TypePing:
		return "ping"
	case TypeMove:
		return "move"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

type Message interface {
	Type() Type
	args() []any
}

type Ping struct {
	SentAt int64 // unix milliseconds
}

func NewPing(at time.Time) Ping { return Ping{SentAt: at.UnixMilli()} }

func (Ping) Type() Type        { return TypePing }
func (p Ping) args() []any     { return []any{p.SentAt} }
func (p Ping) Time() time.Time { return time.UnixMilli(p.SentAt) }

type Move struct {
	From string
	To   string
}

func (Move) Type() Type    { return TypeMove }
func (m Move) args() []any { return []any{m.From, m.To} }

func Encode(m Message) ([]byte, error) {
	if mv, ok := m.(Move); ok {
		if !ValidLabel(mv.From) || !ValidLabel(mv.To) {
			return nil, fmt.Errorf("%w: move %q -> %q", ErrBadArgs, mv.From, mv.To)
		}
	}
	return json.Marshal([]any{int(m.Type()), m.args()})
}

func Decode(data []byte) (Message, error) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(frame) != 2 {
		return nil, fmt.Errorf("%w: want 2 elements, got %d", ErrMalformed, len(frame))
	}

	var t int
	if err := json.Unmarshal(frame[0], &t); err != nil {
		return nil, fmt.Errorf("%w: type tag: %v", ErrMalformed, err)
	}

	switch Type(t) {
	case TypePing:
		var args []float64
		if err := json.Unmarshal(frame[1], &args); err != nil || len(args) != 1 {
			return nil, fmt.Errorf("%w: ping wants [timestamp]", ErrBadArgs)
		}
		return Ping{SentAt: int64(args[0])}, nil

	case TypeMove:
		var args []string
		if err := json.Unmarshal(frame[1], &args); err != nil || len(args) != 2 {
			return nil, fmt.Errorf("%w: move wants [from, to]", ErrBadArgs)
		}
		if !ValidLabel(args[0]) || !ValidLabel(args[1]) {
			return nil, fmt.Errorf("%w: move %q -> %q", ErrBadArgs, args[0], args[1])
		}
		return Move{From: args[0], To: args[1]}, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}

// ChannelPrefix is prepended to a room code to form the relay channel name.
const ChannelPrefix = "kfchess-"

func Channel(room string) string { return ChannelPrefix + room }

// RoomCode strips the channel prefix. Names without it are taken as codes.
func RoomCode(channel string) string { return strings.TrimPrefix(channel, ChannelPrefix) }

// ValidLabel reports whether s names a square, "a1" through "h8".
func ValidLabel(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
