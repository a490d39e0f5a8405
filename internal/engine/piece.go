package engine

import "math"

type Rules struct {
	Speed         float64 // horizontal units per second
	PeakHeight    float64
	CaptureRadius float64
	Cooldown      float64 // seconds
	SquareSize    float64
}

func DefaultRules() Rules {
	return Rules{
		Speed:         2,
		PeakHeight:    2,
		CaptureRadius: 1,
		Cooldown:      5,
		SquareSize:    2.4,
	}
}

// Coords maps a square to its resting point. Files run along -x, ranks along +z.
func (r Rules) Coords(sq Square) Vec3 {
	return Vec3{X: -float64(sq.File) * r.SquareSize, Z: float64(sq.Rank) * r.SquareSize}
}

type Vec3 struct {
	X, Y, Z float64
}

// Planar is the distance between v and o projected on the board plane.
func (v Vec3) Planar(o Vec3) float64 { return math.Hypot(v.X-o.X, v.Z-o.Z) }

type Piece struct {
	Kind  Kind
	Side  Side
	Mode  Mode
	Alive bool

	// Square is the logical square, moved to the destination when a move is
	// accepted, not when the piece arrives.
	Square Square

	Origin   Vec3
	Pos      Vec3
	Dest     Vec3
	Vel      Vec3
	Accel    float64
	StartT   float64
	Duration float64
	Cooldown float64
}

func NewPiece(k Kind, s Side, sq Square, r Rules) Piece {
	at := r.Coords(sq)
	return Piece{
		Kind:   k,
		Side:   s,
		Mode:   Idle,
		Alive:  true,
		Square: sq,
		Origin: at,
		Pos:    at,
		Dest:   at,
	}
}

// Launch starts a symmetric arc from the current square to dst at time t.
// The vertical term is v0*dt - a*dt^2/2 with a = 8h/T^2 and v0 = a*T/2, which
// peaks at h when dt = T/2 and returns to zero at dt = T.
func (p *Piece) Launch(dst Square, t float64, r Rules) {
	src := r.Coords(p.Square)
	tgt := r.Coords(dst)
	dx, dz := tgt.X-src.X, tgt.Z-src.Z
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		return
	}

	p.Square = dst
	p.Origin = src
	p.Pos = src
	p.Dest = tgt
	p.Duration = dist / r.Speed
	p.Accel = 8 * r.PeakHeight / (p.Duration * p.Duration)
	p.Vel = Vec3{
		X: r.Speed * dx / dist,
		Y: p.Accel * p.Duration / 2,
		Z: r.Speed * dz / dist,
	}
	p.StartT = t
	p.Mode = Moving
}

func (p *Piece) height(dt float64) float64 {
	return (p.Vel.Y - p.Accel*dt/2) * dt
}

// PositionAt evaluates the arc dt seconds after launch without mutating p.
func (p *Piece) PositionAt(dt float64) Vec3 {
	if p.Mode != Moving {
		return p.Pos
	}
	return Vec3{
		X: p.Origin.X + p.Vel.X*dt,
		Y: p.Origin.Y + p.height(dt),
		Z: p.Origin.Z + p.Vel.Z*dt,
	}
}

// Advance moves a flying piece to its position at time t and reports whether
// the arc is finished, which is the moment the height goes negative. A
// finished piece sits on its destination, still Moving, until Land.
func (p *Piece) Advance(t float64) bool {
	if p.Mode != Moving {
		return false
	}
	dt := t - p.StartT
	if dt < 0 {
		dt = 0
	}
	if p.height(dt) < 0 {
		p.Pos = p.Dest
		return true
	}
	p.Pos = p.PositionAt(dt)
	return false
}

// Land snaps the piece onto its destination and starts the cooldown.
func (p *Piece) Land(r Rules) {
	if p.Mode != Moving {
		return
	}
	p.Origin = p.Dest
	p.Pos = p.Dest
	p.Vel = Vec3{}
	p.Accel = 0
	p.Duration = 0
	p.Cooldown = r.Cooldown
	p.Mode = Idle
}

func (p *Piece) DecayCooldown(dt float64) {
	if p.Cooldown <= 0 {
		p.Cooldown = 0
		return
	}
	p.Cooldown -= dt
	if p.Cooldown < 0 {
		p.Cooldown = 0
	}
}

// CooldownFraction is 1 right after landing and 0 once the piece is ready.
func (p *Piece) CooldownFraction(r Rules) float64 {
	if r.Cooldown <= 0 {
		return 0
	}
	return p.Cooldown / r.Cooldown
}

func (p *Piece) Kill() {
	p.Mode = Eaten
	p.Alive = false
}
