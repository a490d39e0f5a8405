package hub

import (
	"context"
	"time"

	"github.com/DoyleJ11/kungfu-chess/internal/room"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// CreateRoom replies nil when the code is taken.
type CreateRoom struct {
	Code  string
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type EnsureRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ListRooms struct {
	Reply chan []string
}

type ShutdownHub struct{}

// roomIdle reports a room that closed itself for lack of subscribers.
type roomIdle struct{ room *room.Room }

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}
func (roomIdle) isHubMsg()    {}

const defaultRoomIdle = 2 * time.Minute

type Hub struct {
	inbox chan HubMsg
	rooms map[string]*room.Room
	log   *zap.Logger

	idleAfter time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Hub)

// WithRoomIdle sets how long a room may sit without subscribers before it is
// closed and forgotten. Zero keeps rooms until they are removed.
func WithRoomIdle(d time.Duration) Option { return func(h *Hub) { h.idleAfter = d } }

func NewHub(parent context.Context, log *zap.Logger, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		inbox:     make(chan HubMsg, 64),
		rooms:     make(map[string]*room.Room),
		log:       log,
		idleAfter: defaultRoomIdle,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

// Get, Ensure and Create are the request/reply round trips callers use.
// They return nil if the hub has stopped.

func (h *Hub) Get(ctx context.Context, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	return h.ask(ctx, GetRoom{Code: code, Reply: reply}, reply)
}

func (h *Hub) Ensure(ctx context.Context, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	return h.ask(ctx, EnsureRoom{Code: code, Reply: reply}, reply)
}

func (h *Hub) Create(ctx context.Context, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	return h.ask(ctx, CreateRoom{Code: code, Reply: reply}, reply)
}

// Join subscribes to the room named code, opening it if needed. A room that
// closes between lookup and subscribe is looked up again once. It returns
// nil if the hub has stopped or ctx ended.
func (h *Hub) Join(ctx context.Context, code string, sub room.Subscribe) *room.Room {
	for attempt := 0; attempt < 2; attempt++ {
		rm := h.Ensure(ctx, code)
		if rm == nil {
			return nil
		}
		if rm.Send(ctx, sub) {
			return rm
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

// Remove asks the hub to close and forget code. It reports false if the hub
// has stopped or ctx ended first.
func (h *Hub) Remove(ctx context.Context, code string) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.inbox <- RemoveRoom{Code: code}:
		return true
	case <-h.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) ask(ctx context.Context, m HubMsg, reply chan *room.Room) *room.Room {
	select {
	case h.inbox <- m:
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case rm := <-reply:
		return rm
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if h.rooms[msg.Code] != nil {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.open(msg.Code)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case EnsureRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.open(msg.Code)

			case RemoveRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					rm.Send(h.ctx, room.Shutdown{})
					delete(h.rooms, msg.Code)
					h.log.Info("room removed", zap.String("room", msg.Code))
				}

			case roomIdle:
				code := msg.room.Code()
				if h.rooms[code] == msg.room {
					delete(h.rooms, code)
					h.log.Info("idle room removed", zap.String("room", code), zap.Int("rooms", len(h.rooms)))
				}

			case ListRooms:
				codes := make([]string, 0, len(h.rooms))
				for code := range h.rooms {
					codes = append(codes, code)
				}
				msg.Reply <- codes

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) open(code string) *room.Room {
	rm := room.NewRoom(h.ctx, code, h.log, room.WithIdleTimeout(h.idleAfter, h.forget))
	h.rooms[code] = rm
	h.log.Info("room opened", zap.String("room", code), zap.Int("rooms", len(h.rooms)))
	return rm
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		select {
		case rm.Inbox() <- room.Shutdown{}:
		default:
			// Inbox full; the cancel below stops the room anyway.
		}
	}
	clear(h.rooms)
	h.cancel()
}

// forget runs on the room goroutine, so the report goes through the inbox
// without holding it up.
func (h *Hub) forget(rm *room.Room) {
	go func() {
		select {
		case h.inbox <- roomIdle{room: rm}:
		case <-h.ctx.Done():
		}
	}()
}
