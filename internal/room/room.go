package room

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Msg interface{ isRoomMsg() }

// Publish fans Data out to every subscriber except From.
type Publish struct {
	From string
	Data []byte
}

func (Publish) isRoomMsg() {}

type Subscribe struct {
	ID     string
	Outbox chan Frame // closed by the room on Unsubscribe, drop or shutdown
}

func (Subscribe) isRoomMsg() {}

type Unsubscribe struct{ ID string }

func (Unsubscribe) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

// idleFired is sent by the idle timer; gen drops fires from timers that were
// stopped after they had already fired.
type idleFired struct{ gen int }

func (idleFired) isRoomMsg() {}

// Frame is one published message as delivered. Seq counts publishes in the
// room, so a subscriber that sees a gap knows it missed something.
type Frame struct {
	Seq  int
	Data []byte
}

type View struct {
	Code           string
	Seq            int
	NumSubscribers int
}

// Room is one relay channel. A single goroutine owns the subscriber set, so
// frames reach every subscriber in publish order.
type Room struct {
	code  string
	inbox chan Msg
	seq   int
	subs  map[string]chan Frame
	log   *zap.Logger

	idleAfter time.Duration
	onIdle    func(*Room)
	idleTimer *time.Timer
	idleGen   int

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Room)

// WithIdleTimeout closes the room once it has had no subscribers for d, then
// calls onIdle from the room goroutine. onIdle must not block. Zero keeps
// the room open until Shutdown.
func WithIdleTimeout(d time.Duration, onIdle func(*Room)) Option {
	return func(r *Room) {
		r.idleAfter = d
		r.onIdle = onIdle
	}
}

func NewRoom(parent context.Context, code string, log *zap.Logger, opts ...Option) *Room {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}

	r := &Room{
		code:   code,
		inbox:  make(chan Msg, 64),
		subs:   make(map[string]chan Frame),
		log:    log.With(zap.String("room", code)),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.armIdle()
	go r.loop()
	return r
}

func (r *Room) Code() string { return r.code }

// Inbox exposes the room to the transports and to tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Send delivers m unless the room is gone or ctx ends first.
func (r *Room) Send(ctx context.Context, m Msg) bool {
	if r.ctx.Err() != nil {
		return false
	}
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Subscribe:
				if old, ok := r.subs[msg.ID]; ok {
					close(old)
				}
				r.subs[msg.ID] = msg.Outbox
				r.stopIdle()
				r.log.Info("subscribed", zap.String("subscriber", msg.ID), zap.Int("subscribers", len(r.subs)))

			case Unsubscribe:
				if ch, ok := r.subs[msg.ID]; ok {
					close(ch)
					delete(r.subs, msg.ID)
					r.log.Info("unsubscribed", zap.String("subscriber", msg.ID), zap.Int("subscribers", len(r.subs)))
				}
				r.armIdle()

			case Publish:
				r.seq++
				r.broadcast(msg.From, Frame{Seq: r.seq, Data: msg.Data})
				r.armIdle()

			case GetState:
				msg.Reply <- View{
					Code:           r.code,
					Seq:            r.seq,
					NumSubscribers: len(r.subs),
				}

			case idleFired:
				if msg.gen != r.idleGen || len(r.subs) > 0 {
					break
				}
				r.log.Info("closing idle room", zap.Duration("idle", r.idleAfter))
				r.shutdown()
				if r.onIdle != nil {
					r.onIdle(r)
				}
				return

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	r.stopIdle()
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
	r.cancel()
}

func (r *Room) broadcast(from string, f Frame) {
	for id, ch := range r.subs {
		if id == from {
			continue
		}
		select {
		case ch <- f:
		default:
			// Slow subscriber, drop it rather than stall the room.
			close(ch)
			delete(r.subs, id)
			r.log.Info("dropped slow subscriber", zap.String("subscriber", id), zap.Int("seq", f.Seq))
		}
	}
}

// armIdle starts the idle timer if the room is empty and none is running.
func (r *Room) armIdle() {
	if r.idleAfter <= 0 || len(r.subs) > 0 || r.idleTimer != nil {
		return
	}
	r.idleGen++
	gen := r.idleGen
	r.idleTimer = time.AfterFunc(r.idleAfter, func() {
		select {
		case r.inbox <- idleFired{gen: gen}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) stopIdle() {
	if r.idleTimer == nil {
		return
	}
	r.idleTimer.Stop()
	r.idleTimer = nil
	r.idleGen++
}
