package pool

import "testing"

// fakeOracle is a scripted motion oracle: tests place bodies, queue contacts
// and stop motion by hand, then call Tick.
type fakeOracle struct {
	next     BodyHandle
	bodies   map[BodyHandle]*fakeBody
	pending  []Contact
	impulses []Vec2
	removed  []BodyHandle
}

type fakeBody struct {
	label string
	pos   Vec2
	speed float64
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{next: 1, bodies: make(map[BodyHandle]*fakeBody)}
}

func (f *fakeOracle) CreateBody(kind BodyKind, label string, pos Vec2, radius float64, props BodyProps) BodyHandle {
	h := f.next
	f.next++
	f.bodies[h] = &fakeBody{label: label, pos: pos}
	return h
}

func (f *fakeOracle) RemoveBody(h BodyHandle) {
	delete(f.bodies, h)
	f.removed = append(f.removed, h)
}

func (f *fakeOracle) ApplyImpulse(h BodyHandle, impulse Vec2) {
	f.impulses = append(f.impulses, impulse)
	if b, ok := f.bodies[h]; ok {
		b.speed += impulse.Magnitude()
	}
}

func (f *fakeOracle) Position(h BodyHandle) Vec2 {
	if b, ok := f.bodies[h]; ok {
		return b.pos
	}
	return Vec2{}
}

func (f *fakeOracle) Speed(h BodyHandle) float64 {
	if b, ok := f.bodies[h]; ok {
		return b.speed
	}
	return 0
}

func (f *fakeOracle) Label(h BodyHandle) string {
	if h == wallHandle {
		return WallLabel
	}
	if b, ok := f.bodies[h]; ok {
		return b.label
	}
	return ""
}

func (f *fakeOracle) Step() []Contact {
	out := f.pending
	f.pending = nil
	return out
}

// wallHandle is never handed out by CreateBody.
const wallHandle BodyHandle = -100

func (f *fakeOracle) stopAll() {
	for _, b := range f.bodies {
		b.speed = 0
	}
}

// testTable wraps a session and its fake oracle with shot helpers.
type testTable struct {
	t *testing.T
	s *Session
	f *fakeOracle
}

func newTestTable(t *testing.T, policy PocketPolicy) *testTable {
	t.Helper()
	f := newFakeOracle()
	s := NewSession(f, NewTable(), Options{PocketPolicy: policy})
	s.Drain()
	return &testTable{t: t, s: s, f: f}
}

func (tt *testTable) handle(id BallID) BodyHandle {
	tt.t.Helper()
	b := tt.s.registry.Ball(id)
	if b == nil {
		tt.t.Fatalf("no entity for ball %s", id)
	}
	return b.handle
}

// shoot aims from the right of the cue ball so the shot goes left, and commits.
func (tt *testTable) shoot() {
	tt.t.Helper()
	cue := tt.f.Position(tt.handle(Cue))
	tt.s.BeginAim()
	tt.s.UpdateAim(cue.Plus(Vec2{X: 100}))
	if !tt.s.CommitShot() {
		tt.t.Fatalf("shot was not committed (phase=%s)", tt.s.Phase())
	}
}

func (tt *testTable) contact(a, b BallID) {
	tt.f.pending = append(tt.f.pending, Contact{A: tt.handle(a), B: tt.handle(b)})
}

func (tt *testTable) contactWall(a BallID) {
	tt.f.pending = append(tt.f.pending, Contact{A: tt.handle(a), B: wallHandle})
}

// sink moves the ball into pocket p; the rule engine notices at rest.
func (tt *testTable) sink(id BallID, pocket int) {
	tt.f.bodies[tt.handle(id)].pos = tt.s.table.Pockets()[pocket].Center
}

// settle stops every ball and runs one tick so the shot resolves.
func (tt *testTable) settle() {
	tt.f.stopAll()
	tt.s.Tick()
}

// assign gives seat 1 the group g and pockets the first n balls of it, all
// scored to seat 1.
func (tt *testTable) assign(g Group, n int) {
	tt.s.players[0].Group = g
	tt.s.players[1].Group = g.Complement()
	count := 0
	for b := range tt.s.registry.All() {
		if count == n {
			break
		}
		if b.Group == g {
			tt.s.registry.Remove(b.ID)
			count++
		}
	}
	tt.s.players[0].Score = n
}

// assignBoth gives seat 1 the group g with mine of its balls pocketed and
// scored, and seat 2 the complement with theirs.
func (tt *testTable) assignBoth(g Group, mine, theirs int) {
	tt.assign(g, mine)
	count := 0
	for b := range tt.s.registry.All() {
		if count == theirs {
			break
		}
		if b.Group == g.Complement() && b.OnTable() {
			tt.s.registry.Remove(b.ID)
			count++
		}
	}
	tt.s.players[1].Score = theirs
}
