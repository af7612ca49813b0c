package pool

import (
	"iter"
	"log"
	"math"
)

// BallStatus is the live/pocketed state of a ball entity.
type BallStatus string

const (
	StatusOnTable  BallStatus = "ON_TABLE"
	StatusPocketed BallStatus = "POCKETED"
)

// Ball is one ball entity. A pocketed entity is never put back on the table;
// the cue ball comes back as a fresh entity with the same ID.
type Ball struct {
	ID     BallID
	Group  Group
	Status BallStatus

	handle  BodyHandle
	lastPos Vec2
}

func (b *Ball) OnTable() bool { return b.Status == StatusOnTable }

// Handle is the oracle body backing this ball.
func (b *Ball) Handle() BodyHandle { return b.handle }

// rackOrder fills the triangle row by row, apex first. The eight sits in the
// middle of the third row.
var rackOrder = [15]BallID{
	1,
	9, 2,
	10, 8, 3,
	11, 4, 12, 5,
	6, 13, 7, 14, 15,
}

// Registry owns the sixteen ball entities and their oracle bodies.
type Registry struct {
	oracle   MotionOracle
	cue      *Ball
	numbered []*Ball // ascending ID order
}

func NewRegistry(oracle MotionOracle) *Registry {
	return &Registry{oracle: oracle}
}

// RackPositions returns the starting spot of every numbered ball.
func RackPositions() map[BallID]Vec2 {
	out := make(map[BallID]Vec2, len(rackOrder))
	rowStep := RackSpacing * math.Sqrt(3) / 2
	i := 0
	for row := 0; row < 5; row++ {
		for col := 0; col <= row; col++ {
			out[rackOrder[i]] = NewVec2(
				RackApex.X+float64(row)*rowStep,
				RackApex.Y+(float64(col)-float64(row)/2)*RackSpacing,
			)
			i++
		}
	}
	return out
}

// Rack clears any live bodies and sets up a fresh break: cue ball on the
// break spot, numbered balls in the triangle.
func (r *Registry) Rack() {
	r.clear()

	r.cue = r.spawn(Cue, BreakSpot)

	positions := RackPositions()
	r.numbered = make([]*Ball, 0, 15)
	for n := 1; n <= 15; n++ {
		id := BallID(n)
		r.numbered = append(r.numbered, r.spawn(id, positions[id]))
	}
}

func (r *Registry) clear() {
	for b := range r.Active() {
		r.oracle.RemoveBody(b.handle)
	}
	r.cue = nil
	r.numbered = nil
}

func (r *Registry) spawn(id BallID, pos Vec2) *Ball {
	h := r.oracle.CreateBody(BodyBall, id.Label(), pos, BallRadius, BallProps)
	return &Ball{ID: id, Group: GroupOf(id), Status: StatusOnTable, handle: h, lastPos: pos}
}

// Remove marks the on-table ball with this ID pocketed and takes its body out
// of the simulation. It reports false when no such ball is on the table.
func (r *Registry) Remove(id BallID) bool {
	b := r.Ball(id)
	if b == nil || !b.OnTable() {
		return false
	}
	b.lastPos = r.oracle.Position(b.handle)
	r.oracle.RemoveBody(b.handle)
	b.Status = StatusPocketed
	return true
}

// RespawnCue creates a new cue ball on the break spot. It only succeeds when
// the previous cue entity is gone or pocketed, so two cue balls never coexist.
func (r *Registry) RespawnCue() (*Ball, bool) {
	if r.cue != nil && r.cue.OnTable() {
		log.Printf("[POOL] Cue respawn refused, cue ball still on table")
		return nil, false
	}
	r.cue = r.spawn(Cue, BreakSpot)
	return r.cue, true
}

// Cue returns the current cue ball entity, which may be nil or pocketed.
func (r *Registry) Cue() *Ball { return r.cue }

// Ball returns the current entity for id, or nil.
func (r *Registry) Ball(id BallID) *Ball {
	if id == Cue {
		return r.cue
	}
	if !id.IsNumbered() || len(r.numbered) < int(id) {
		return nil
	}
	return r.numbered[id-1]
}

// Active yields every ball on the table, cue first. Each call walks the
// current state again, so the sequence can be ranged over any number of times.
func (r *Registry) Active() iter.Seq[*Ball] {
	return func(yield func(*Ball) bool) {
		if r.cue != nil && r.cue.OnTable() {
			if !yield(r.cue) {
				return
			}
		}
		for _, b := range r.numbered {
			if b.OnTable() && !yield(b) {
				return
			}
		}
	}
}

// All yields the current entity of every ball, pocketed ones included.
func (r *Registry) All() iter.Seq[*Ball] {
	return func(yield func(*Ball) bool) {
		if r.cue != nil && !yield(r.cue) {
			return
		}
		for _, b := range r.numbered {
			if !yield(b) {
				return
			}
		}
	}
}

// PocketedCount is how many balls of group g are off the table.
func (r *Registry) PocketedCount(g Group) int {
	n := 0
	for _, b := range r.numbered {
		if b.Group == g && !b.OnTable() {
			n++
		}
	}
	return n
}

// Position returns where b is now, or where it was when it left the table.
func (r *Registry) Position(b *Ball) Vec2 {
	if b.OnTable() {
		return r.oracle.Position(b.handle)
	}
	return b.lastPos
}
