package netsync

import "github.com/DoyleJ11/kungfu-chess/pkg/protocol"

// Inbox queues moves from the relay callback until the frame drains them.
// Push never blocks; a full inbox drops the move and reports false.
type Inbox struct {
	ch chan protocol.Move
}

func NewInbox(size int) *Inbox {
	return &Inbox{ch: make(chan protocol.Move, size)}
}

func (in *Inbox) Push(m protocol.Move) bool {
	select {
	case in.ch <- m:
		return true
	default:
		return false
	}
}

// Drain returns everything queued so far, oldest first. Non-blocking.
func (in *Inbox) Drain() []protocol.Move {
	return drainChan(in.ch)
}

func (in *Inbox) Len() int { return len(in.ch) }

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
