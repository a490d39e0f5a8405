package netsync

import (
	"errors"
	"time"

	"github.com/DoyleJ11/kungfu-chess/internal/engine"
	"github.com/DoyleJ11/kungfu-chess/pkg/protocol"
	"go.uber.org/zap"
)

var ErrNotBound = errors.New("session has no link")

const (
	inboxSize    = 256
	commandsSize = 64
)

// Link carries encoded messages to the other peer. Send must not block the
// frame.
type Link interface {
	Send(m protocol.Message) error
}

type LinkFunc func(m protocol.Message) error

func (f LinkFunc) Send(m protocol.Message) error { return f(m) }

// Commands are local inputs handed over from other goroutines, applied at
// the start of the next frame.
type Command interface{ isCommand() }

type LocalMove struct{ From, To engine.Square }

type Click struct{ Square engine.Square }

type Reset struct{}

type SetSide struct{ Side engine.Side }

// Inspect runs Fn on the frame goroutine, for reads such as printing the board.
type Inspect struct{ Fn func(g *engine.Game) }

func (LocalMove) isCommand() {}
func (Click) isCommand()     {}
func (Reset) isCommand()     {}
func (SetSide) isCommand()   {}
func (Inspect) isCommand()   {}

// Session ties one local Game to the relay. Deliver and Input may be called
// from any goroutine; everything else belongs to the frame goroutine.
type Session struct {
	game     *engine.Game
	log      *zap.Logger
	link     Link
	inbox    *Inbox
	commands chan Command
	now      func() time.Time
}

func NewSession(g *engine.Game, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		game:     g,
		log:      log,
		inbox:    NewInbox(inboxSize),
		commands: make(chan Command, commandsSize),
		now:      time.Now,
	}
}

// Bind sets where accepted local moves are broadcast. Call before the first
// frame.
func (s *Session) Bind(l Link) { s.link = l }

func (s *Session) Game() *engine.Game { return s.game }

// Deliver takes one raw frame from the relay. Pings are logged, moves are
// queued for the next frame, anything else is dropped.
func (s *Session) Deliver(data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		s.log.Warn("dropping frame", zap.Error(err), zap.Int("bytes", len(data)))
		return
	}
	switch m := msg.(type) {
	case protocol.Ping:
		s.log.Debug("ping", zap.Duration("latency", s.now().Sub(m.Time())))
	case protocol.Move:
		if !s.inbox.Push(m) {
			s.log.Warn("inbox full, dropping remote move", zap.String("from", m.From), zap.String("to", m.To))
		}
	}
}

// Input queues a local command. It reports false if the queue is full.
func (s *Session) Input(c Command) bool {
	select {
	case s.commands <- c:
		return true
	default:
		s.log.Warn("input queue full, dropping command")
		return false
	}
}

// Move applies a local move and, if accepted, broadcasts it. A failed send
// is logged; the move stands locally.
func (s *Session) Move(from, to engine.Square, t float64) bool {
	if !s.game.Submit(from, to, t) {
		return false
	}
	s.broadcast(protocol.Move{From: from.String(), To: to.String()})
	return true
}

// Click feeds a square pick; the second pick of a pair goes through Move.
func (s *Session) Click(sq engine.Square, t float64) bool {
	req, ok := s.game.Click(sq, t)
	if !ok {
		return false
	}
	return s.Move(req.From, req.To, req.At)
}

func (s *Session) broadcast(m protocol.Message) {
	if s.link == nil {
		s.log.Debug("not broadcasting", zap.Error(ErrNotBound))
		return
	}
	if err := s.link.Send(m); err != nil {
		s.log.Warn("broadcast failed", zap.Stringer("type", m.Type()), zap.Error(err))
	}
}

// Frame is the per-frame entry point: local commands, then remote moves
// replayed through the same acceptance path, then the simulation step.
func (s *Session) Frame(t, dt float64) []engine.Event {
	for _, c := range drainChan(s.commands) {
		s.apply(c, t)
	}

	for _, m := range s.inbox.Drain() {
		s.replay(m, t)
	}

	return s.game.Tick(t, dt)
}

func (s *Session) apply(c Command, t float64) {
	switch c := c.(type) {
	case LocalMove:
		s.Move(c.From, c.To, t)
	case Click:
		s.Click(c.Square, t)
	case Reset:
		s.game.Reset()
	case SetSide:
		s.game.SetSide(c.Side)
		s.log.Info("playing as", zap.Stringer("side", c.Side))
	case Inspect:
		c.Fn(s.game)
	}
}

func (s *Session) replay(m protocol.Move, t float64) {
	from, err := engine.ParseSquare(m.From)
	if err != nil {
		s.log.Warn("remote move dropped", zap.Error(err))
		return
	}
	to, err := engine.ParseSquare(m.To)
	if err != nil {
		s.log.Warn("remote move dropped", zap.Error(err))
		return
	}

	err = s.game.Move(engine.MoveRequest{From: from, To: to, At: t, Source: engine.SourceRemote})
	if err != nil {
		// Peers may have diverged; nothing reconciles them.
		s.log.Info("remote move dropped",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Error(err),
			zap.String("fen", s.game.Board().FEN()),
		)
	}
}
