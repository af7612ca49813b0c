package physics

import (
	"math"
	"sort"

	"github.com/playmatatu/turntable/internal/pool"
)

// Substeps is how many integration steps one Step is split into. At the
// maximum shot power a ball moves well under a radius per substep, so balls
// cannot pass through each other.
const Substeps = 8

// contactSlop keeps two resting balls that just touched counted as touching,
// so they do not report a fresh contact every tick.
const contactSlop = 0.05

// RailProps are the cushion properties. Rails never move.
var RailProps = pool.BodyProps{Restitution: 0.8}

type body struct {
	handle pool.BodyHandle
	kind   pool.BodyKind
	label  string
	pos    pool.Vec2
	vel    pool.Vec2
	radius float64
	props  pool.BodyProps

	// rail is set for the four cushions built with the world.
	rail *pool.Rail
	// captured balls sit in a pocket and no longer move or collide.
	captured bool
}

func (b *body) invMass() float64 {
	if b.kind == pool.BodyWall || b.props.Mass <= 0 {
		return 0
	}
	return 1 / b.props.Mass
}

type pair struct {
	a, b pool.BodyHandle
}

func makePair(a, b pool.BodyHandle) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// World is a small rigid-body simulation of circles on the table. It
// implements pool.MotionOracle. Iteration is always in handle order, so the
// same inputs give the same trajectories.
type World struct {
	table    *pool.Table
	bodies   map[pool.BodyHandle]*body
	order    []pool.BodyHandle
	next     pool.BodyHandle
	touching map[pair]bool
}

var _ pool.MotionOracle = (*World)(nil)

// NewWorld builds a world with one static wall body per rail of the table.
func NewWorld(table *pool.Table) *World {
	w := &World{
		table:    table,
		bodies:   make(map[pool.BodyHandle]*body),
		next:     1,
		touching: make(map[pair]bool),
	}
	for _, r := range table.Rails() {
		rail := r
		w.add(&body{kind: pool.BodyWall, label: pool.WallLabel, pos: rail.From, props: RailProps, rail: &rail})
	}
	return w
}

func (w *World) add(b *body) pool.BodyHandle {
	b.handle = w.next
	w.next++
	w.bodies[b.handle] = b
	w.order = append(w.order, b.handle)
	return b.handle
}

// CreateBody adds a ball, or a static round post for pool.BodyWall.
func (w *World) CreateBody(kind pool.BodyKind, label string, pos pool.Vec2, radius float64, props pool.BodyProps) pool.BodyHandle {
	return w.add(&body{kind: kind, label: label, pos: pos, radius: radius, props: props})
}

func (w *World) RemoveBody(h pool.BodyHandle) {
	if _, ok := w.bodies[h]; !ok {
		return
	}
	delete(w.bodies, h)
	i := sort.Search(len(w.order), func(i int) bool { return w.order[i] >= h })
	if i < len(w.order) && w.order[i] == h {
		w.order = append(w.order[:i], w.order[i+1:]...)
	}
	for p := range w.touching {
		if p.a == h || p.b == h {
			delete(w.touching, p)
		}
	}
}

func (w *World) ApplyImpulse(h pool.BodyHandle, impulse pool.Vec2) {
	b, ok := w.bodies[h]
	if !ok || b.captured {
		return
	}
	b.vel = b.vel.Plus(impulse.Times(b.invMass()))
}

func (w *World) Position(h pool.BodyHandle) pool.Vec2 {
	if b, ok := w.bodies[h]; ok {
		return b.pos
	}
	return pool.Vec2{}
}

func (w *World) Speed(h pool.BodyHandle) float64 {
	return w.velocity(h).Magnitude()
}

func (w *World) Label(h pool.BodyHandle) string {
	if b, ok := w.bodies[h]; ok {
		return b.label
	}
	return ""
}

// velocity is zero for unknown bodies.
func (w *World) velocity(h pool.BodyHandle) pool.Vec2 {
	if b, ok := w.bodies[h]; ok {
		return b.vel
	}
	return pool.Vec2{}
}

// captured reports whether the body has dropped into a pocket.
func (w *World) captured(h pool.BodyHandle) bool {
	b, ok := w.bodies[h]
	return ok && b.captured
}

// Step advances one tick and returns the pairs that started touching during it.
func (w *World) Step() []pool.Contact {
	now := make(map[pair]bool)
	var started []pool.Contact
	note := func(a, b pool.BodyHandle) {
		p := makePair(a, b)
		if now[p] {
			return
		}
		now[p] = true
		if !w.touching[p] {
			started = append(started, pool.Contact{A: p.a, B: p.b})
		}
	}

	balls := w.movingBodies()
	dt := 1.0 / Substeps
	for i := 0; i < Substeps; i++ {
		for _, b := range balls {
			if b.captured || b.vel.IsZero() {
				continue
			}
			b.pos = b.pos.Plus(b.vel.Times(dt))
			w.capture(b)
		}
		w.collideBodies(note)
		w.collideRails(balls, note)
	}

	for _, b := range balls {
		if !b.captured {
			damp(b)
		}
	}

	w.touching = now
	return started
}

// movingBodies lists the balls in handle order.
func (w *World) movingBodies() []*body {
	out := make([]*body, 0, len(w.order))
	for _, h := range w.order {
		if b := w.bodies[h]; b.kind == pool.BodyBall {
			out = append(out, b)
		}
	}
	return out
}

// capture drops a ball into a pocket once its centre is inside the capture
// radius, or once it has left the playing surface through a pocket mouth.
func (w *World) capture(b *body) {
	if p, ok := w.table.PocketAt(b.pos); ok {
		w.park(b, p)
		return
	}
	if !w.table.Contains(b.pos) {
		w.park(b, w.nearestPocket(b.pos))
	}
}

func (w *World) park(b *body, p pool.Pocket) {
	b.pos = p.Center
	b.vel = pool.Vec2{}
	b.captured = true
}

func (w *World) nearestPocket(pos pool.Vec2) pool.Pocket {
	pockets := w.table.Pockets()
	best := pockets[0]
	for _, p := range pockets[1:] {
		if pos.DistanceTo(p.Center) < pos.DistanceTo(best.Center) {
			best = p
		}
	}
	return best
}

// inMouth is true when a ball is close enough to a pocket that the cushion
// has a gap there.
func (w *World) inMouth(pos pool.Vec2) bool {
	for _, p := range w.table.Pockets() {
		if pos.DistanceTo(p.Center) < p.Radius+pool.BallRadius {
			return true
		}
	}
	return false
}

// collideBodies resolves every overlapping circle pair with an impulse along
// the contact normal and pushes the pair apart.
func (w *World) collideBodies(note func(a, b pool.BodyHandle)) {
	for i, ha := range w.order {
		a := w.bodies[ha]
		if a.rail != nil || a.captured {
			continue
		}
		for _, hb := range w.order[i+1:] {
			b := w.bodies[hb]
			if b.rail != nil || b.captured {
				continue
			}
			if a.kind == pool.BodyWall && b.kind == pool.BodyWall {
				continue
			}
			resolvePair(a, b, note)
		}
	}
}

func resolvePair(a, b *body, note func(a, b pool.BodyHandle)) {
	delta := b.pos.Minus(a.pos)
	dist := delta.Magnitude()
	reach := a.radius + b.radius
	if dist >= reach+contactSlop {
		return
	}
	note(a.handle, b.handle)
	if dist >= reach {
		return
	}

	n := delta.Normalize()
	if dist == 0 {
		n = pool.Vec2{X: 1}
	}
	ia, ib := a.invMass(), b.invMass()
	total := ia + ib
	if total == 0 {
		return
	}

	overlap := reach - dist
	a.pos = a.pos.Minus(n.Times(overlap * ia / total))
	b.pos = b.pos.Plus(n.Times(overlap * ib / total))

	vn := b.vel.Minus(a.vel).Dot(n)
	if vn >= 0 {
		return
	}
	e := math.Min(a.props.Restitution, b.props.Restitution)
	j := -(1 + e) * vn / total
	a.vel = a.vel.Minus(n.Times(j * ia))
	b.vel = b.vel.Plus(n.Times(j * ib))
}

// collideRails reflects balls off the cushions, except inside a pocket mouth.
func (w *World) collideRails(balls []*body, note func(a, b pool.BodyHandle)) {
	for _, h := range w.order {
		wall := w.bodies[h]
		if wall.rail == nil {
			continue
		}
		r := wall.rail
		for _, b := range balls {
			if b.captured {
				continue
			}
			depth := b.radius - b.pos.Minus(r.From).Dot(r.Normal)
			if depth <= -contactSlop || w.inMouth(b.pos) {
				continue
			}
			note(wall.handle, b.handle)
			if depth <= 0 {
				continue
			}

			b.pos = b.pos.Plus(r.Normal.Times(depth))
			vn := b.vel.Dot(r.Normal)
			if vn < 0 {
				e := math.Min(b.props.Restitution, wall.props.Restitution)
				b.vel = b.vel.Minus(r.Normal.Times((1 + e) * vn))
			}
		}
	}
}

// damp applies rolling and air friction once per tick.
func damp(b *body) {
	speed := b.vel.Magnitude()
	if speed == 0 {
		return
	}
	next := speed*(1-b.props.FrictionAir) - b.props.Friction
	if next <= 0 {
		b.vel = pool.Vec2{}
		return
	}
	b.vel = b.vel.Normalize().Times(next)
}
