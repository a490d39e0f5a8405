package engine

import (
	"go.uber.org/zap"
)

// Game is the authoritative state of one client. It is not safe for
// concurrent use; every call belongs to the frame goroutine.
type Game struct {
	rules Rules
	log   *zap.Logger

	arena *Arena
	board Board
	side  Side

	selected    Square
	hasSelected bool

	initial []Placement

	winner Side
	games  int
}

type Option func(*Game)

func WithRules(r Rules) Option { return func(g *Game) { g.rules = r } }

func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

func WithSide(s Side) Option { return func(g *Game) { g.side = s } }

// WithPlacements starts the first game from a custom layout. Reset always
// goes back to the standard one.
func WithPlacements(ps []Placement) Option {
	return func(g *Game) { g.initial = ps }
}

func NewGame(opts ...Option) *Game {
	g := &Game{
		rules: DefaultRules(),
		log:   zap.NewNop(),
		side:  White,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.initial == nil {
		g.initial = StartingPlacements()
	}
	g.load(g.initial)
	g.games = 1
	g.syncBoard()
	return g
}

func (g *Game) load(ps []Placement) {
	g.arena = NewArena()
	for _, p := range ps {
		g.arena.Add(NewPiece(p.Kind, p.Side, p.Square, g.rules))
	}
}

// Reset starts a new game from the standard layout.
func (g *Game) Reset() {
	g.load(StartingPlacements())
	g.hasSelected = false
	g.games++
	g.syncBoard()
	g.log.Info("board reset", zap.Int("game", g.games))
}

func (g *Game) Rules() Rules { return g.rules }

func (g *Game) Side() Side { return g.side }

func (g *Game) SetSide(s Side) {
	g.side = s
	g.hasSelected = false
}

// Winner is the side that won the last finished game, 0 if none has.
func (g *Game) Winner() Side { return g.winner }

func (g *Game) Games() int { return g.games }

func (g *Game) Board() Board { return g.board }

func (g *Game) Piece(id PieceID) (Piece, bool) {
	p, ok := g.arena.Get(id)
	if !ok {
		return Piece{}, false
	}
	return *p, true
}

// PieceAt finds the resting piece on sq.
func (g *Game) PieceAt(sq Square) (PieceID, Piece, bool) {
	id, p, ok := g.restingAt(sq)
	if !ok {
		return id, Piece{}, false
	}
	return id, *p, true
}

func (g *Game) restingAt(sq Square) (PieceID, *Piece, bool) {
	var (
		foundID PieceID
		found   *Piece
	)
	if g.board.At(sq) == 0 {
		return foundID, nil, false
	}
	g.arena.Each(func(id PieceID, p *Piece) {
		if found == nil && p.Alive && p.Mode == Idle && p.Square == sq {
			foundID, found = id, p
		}
	})
	return foundID, found, found != nil
}

func (g *Game) position() Position {
	pos := Position{Board: g.board}
	g.arena.Each(func(_ PieceID, p *Piece) {
		if p.Alive {
			pos.Claims[p.Side.index()] = pos.Claims[p.Side.index()].Add(p.Square)
		}
	})
	return pos
}

// Destinations lists where the resting piece on sq could go right now.
func (g *Game) Destinations(sq Square) Bitboard {
	_, p, ok := g.restingAt(sq)
	if !ok {
		return 0
	}
	pos := g.position()
	return Destinations(&pos, *p)
}

// Move runs a request through the acceptance path. On success the piece is
// launched and its origin square is vacated at once. On error nothing
// changes. Local requests must also name a piece of our side that has
// finished cooling down; remote replays skip both checks.
func (g *Game) Move(req MoveRequest) error {
	if !req.From.Valid() || !req.To.Valid() {
		return ErrBadSquare
	}
	_, p, ok := g.restingAt(req.From)
	if !ok {
		return ErrNoPiece
	}
	if req.Source == SourceLocal {
		if p.Side != g.side {
			return ErrNotYourPiece
		}
		if p.Cooldown > 0 {
			return ErrCoolingDown
		}
	}

	pos := g.position()
	if !IsLegal(&pos, *p, req.To) {
		return ErrIllegalMove
	}

	p.Launch(req.To, req.At, g.rules)
	g.board.Clear(req.From)
	g.log.Debug("move accepted",
		zap.Stringer("kind", p.Kind),
		zap.Stringer("side", p.Side),
		zap.Stringer("from", req.From),
		zap.Stringer("to", req.To),
		zap.Float64("duration", p.Duration),
	)
	return nil
}

// Submit is Move with the rejection reason logged and dropped.
func (g *Game) Submit(from, to Square, t float64) bool {
	err := g.Move(MoveRequest{From: from, To: to, At: t, Source: SourceLocal})
	if err != nil {
		g.log.Debug("move rejected", zap.Stringer("from", from), zap.Stringer("to", to), zap.Error(err))
		return false
	}
	return true
}

// Tick advances one frame: flying pieces move to their position at t,
// touching opposing pairs are resolved, pieces whose arc finished land, the
// board is rebuilt from resting pieces and cooldowns decay by dt. Pieces
// that arrive this frame still count as flying for the collision pass.
// Taking a king ends the game and resets the board within the same call.
func (g *Game) Tick(t, dt float64) []Event {
	var (
		events  []Event
		arrived []PieceID
	)

	g.arena.Each(func(id PieceID, p *Piece) {
		if p.Alive && p.Advance(t) {
			arrived = append(arrived, id)
		}
	})

	caps, kingTaken := g.collide()
	for _, c := range caps {
		victim, _ := g.arena.Get(c.victim)
		events = append(events, Event{
			Type:   EvtCaptured,
			Piece:  c.victim,
			Kind:   victim.Kind,
			Side:   victim.Side,
			Square: victim.Square,
			By:     c.by,
		})
		g.log.Info("captured",
			zap.Stringer("kind", victim.Kind),
			zap.Stringer("side", victim.Side),
			zap.Stringer("square", victim.Square),
		)
	}

	if kingTaken {
		last := caps[len(caps)-1]
		victim, _ := g.arena.Get(last.victim)
		g.winner = victim.Side.Opponent()
		g.log.Info("game over", zap.Stringer("winner", g.winner), zap.Int("game", g.games))
		events = append(events, Event{Type: EvtGameOver, Winner: g.winner})
		g.Reset()
		return append(events, Event{Type: EvtReset})
	}

	for _, id := range arrived {
		p, _ := g.arena.Get(id)
		if !p.Alive {
			continue
		}
		p.Land(g.rules)
		events = append(events, Event{Type: EvtLanded, Piece: id, Kind: p.Kind, Side: p.Side, Square: p.Square})
	}

	g.syncBoard()
	if len(arrived) > 0 {
		if ce := g.log.Check(zap.DebugLevel, "landed"); ce != nil {
			ce.Write(zap.Int("pieces", len(arrived)), zap.String("fen", g.board.FEN()))
		}
	}

	g.arena.Each(func(_ PieceID, p *Piece) {
		if p.Alive {
			p.DecayCooldown(dt)
		}
	})
	return events
}

// syncBoard rebuilds occupancy from resting pieces. Squares left by pieces
// in flight stay empty until they land.
func (g *Game) syncBoard() {
	g.board = Board{}
	g.arena.Each(func(_ PieceID, p *Piece) {
		if p.Alive && p.Mode == Idle {
			g.board.Set(p.Square, p.Kind, p.Side)
		}
	})
}

type Transform struct {
	ID       PieceID
	Kind     Kind
	Side     Side
	Mode     Mode
	Square   Square
	Position Vec3
	Flip     float64
	Cooldown float64
	Selected bool
}

// Transforms is what a renderer draws after Tick: every piece still in play
// at its interpolated position.
func (g *Game) Transforms() []Transform {
	var out []Transform
	g.arena.Each(func(id PieceID, p *Piece) {
		if !p.Alive {
			return
		}
		out = append(out, Transform{
			ID:       id,
			Kind:     p.Kind,
			Side:     p.Side,
			Mode:     p.Mode,
			Square:   p.Square,
			Position: p.Pos,
			Flip:     float64(p.Side),
			Cooldown: p.CooldownFraction(g.rules),
			Selected: g.hasSelected && p.Mode == Idle && p.Square == g.selected,
		})
	})
	return out
}
