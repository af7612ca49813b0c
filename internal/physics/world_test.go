package physics

import (
	"math"
	"testing"

	"github.com/playmatatu/turntable/internal/pool"
)

func newBall(w *World, label string, x, y float64) pool.BodyHandle {
	return w.CreateBody(pool.BodyBall, label, pool.NewVec2(x, y), pool.BallRadius, pool.BallProps)
}

// runUntilStopped steps until every ball is at rest, failing after max ticks.
func runUntilStopped(t *testing.T, w *World, max int) []pool.Contact {
	t.Helper()
	var all []pool.Contact
	for i := 0; i < max; i++ {
		all = append(all, w.Step()...)
		moving := false
		for _, h := range w.order {
			if w.Speed(h) > 0 {
				moving = true
				break
			}
		}
		if !moving {
			return all
		}
	}
	t.Fatalf("balls still moving after %d ticks", max)
	return nil
}

func TestStraightShotMovesCorrectDirection(t *testing.T) {
	w := NewWorld(pool.NewTable())
	cue := newBall(w, "cue", 250, 250)
	target := newBall(w, "1", 400, 250)

	w.ApplyImpulse(cue, pool.Vec2{X: 10})
	runUntilStopped(t, w, 5000)

	if x := w.Position(target).X; x <= 400 {
		t.Errorf("target ball did not move right: x=%.2f", x)
	}
	if y := w.Position(target).Y; math.Abs(y-250) > 0.01 {
		t.Errorf("head-on hit moved target off line: y=%.2f", y)
	}
	if w.Position(cue).X >= w.Position(target).X {
		t.Errorf("cue ball passed through the target")
	}
}

func TestFrictionStopsBalls(t *testing.T) {
	w := NewWorld(pool.NewTable())
	cue := newBall(w, "cue", 200, 250)

	w.ApplyImpulse(cue, pool.Vec2{X: 2})
	runUntilStopped(t, w, 2000)

	if w.Speed(cue) != 0 {
		t.Errorf("cue ball still has speed %.4f", w.Speed(cue))
	}
	if x := w.Position(cue).X; x <= 200 || x >= 500 {
		t.Errorf("gentle shot ended at unexpected x=%.2f", x)
	}
}

func TestDampingOrder(t *testing.T) {
	w := NewWorld(pool.NewTable())
	cue := newBall(w, "cue", 300, 250)
	w.ApplyImpulse(cue, pool.Vec2{X: 10})

	w.Step()

	want := 10*(1-pool.BallProps.FrictionAir) - pool.BallProps.Friction
	if got := w.Speed(cue); math.Abs(got-want) > 1e-3 {
		t.Errorf("speed after one tick = %.4f, want %.4f", got, want)
	}
}

func TestCushionBounce(t *testing.T) {
	w := NewWorld(pool.NewTable())
	cue := newBall(w, "cue", 250, 100)

	w.ApplyImpulse(cue, pool.Vec2{Y: -8})
	contacts := runUntilStopped(t, w, 5000)

	hitWall := false
	for _, c := range contacts {
		if w.Label(c.A) == pool.WallLabel || w.Label(c.B) == pool.WallLabel {
			hitWall = true
		}
	}
	if !hitWall {
		t.Errorf("expected a cushion contact")
	}
	if y := w.Position(cue).Y; y < pool.BallRadius {
		t.Errorf("ball ended inside the top cushion: y=%.2f", y)
	}
	if w.captured(cue) {
		t.Errorf("ball was pocketed away from any pocket")
	}
}

func TestPocketCapture(t *testing.T) {
	table := pool.NewTable()
	w := NewWorld(table)
	ball := newBall(w, "5", 900, 400)

	// aim straight at the bottom-right corner
	w.ApplyImpulse(ball, pool.Vec2{X: 6, Y: 6})
	runUntilStopped(t, w, 5000)

	if !w.captured(ball) {
		t.Fatalf("ball not captured, ended at %+v", w.Position(ball))
	}
	p, ok := table.PocketAt(w.Position(ball))
	if !ok || p.ID != 5 {
		t.Errorf("ball parked at %+v, want bottom-right pocket", w.Position(ball))
	}
	if w.Speed(ball) != 0 {
		t.Errorf("captured ball still moving")
	}

	w.ApplyImpulse(ball, pool.Vec2{X: -5})
	if w.Speed(ball) != 0 {
		t.Errorf("impulse moved a captured ball")
	}
}

func TestSidePocketThroughMouth(t *testing.T) {
	table := pool.NewTable()
	w := NewWorld(table)
	ball := newBall(w, "12", 500, 300)

	w.ApplyImpulse(ball, pool.Vec2{Y: 8})
	runUntilStopped(t, w, 5000)

	p, ok := table.PocketAt(w.Position(ball))
	if !ok || p.ID != 4 {
		t.Errorf("ball ended at %+v, want bottom side pocket", w.Position(ball))
	}
}

func TestContactReportedOnce(t *testing.T) {
	w := NewWorld(pool.NewTable())
	cue := newBall(w, "cue", 300, 250)
	obj := newBall(w, "3", 340, 250)

	w.ApplyImpulse(cue, pool.Vec2{X: 3})
	contacts := runUntilStopped(t, w, 5000)

	n := 0
	for _, c := range contacts {
		if (c.A == cue && c.B == obj) || (c.A == obj && c.B == cue) {
			n++
		}
	}
	if n != 1 {
		t.Errorf("cue/3 contact reported %d times, want 1", n)
	}
}

func TestMomentumTransfer(t *testing.T) {
	w := NewWorld(pool.NewTable())
	cue := newBall(w, "cue", 300, 250)
	obj := newBall(w, "3", 331, 250)

	w.ApplyImpulse(cue, pool.Vec2{X: 5})
	for i := 0; i < 3; i++ {
		w.Step()
	}

	if w.velocity(obj).X <= w.velocity(cue).X {
		t.Errorf("object ball (%.3f) should outrun the cue ball (%.3f) after a full hit",
			w.velocity(obj).X, w.velocity(cue).X)
	}
}

func TestRemoveBody(t *testing.T) {
	w := NewWorld(pool.NewTable())
	a := newBall(w, "1", 300, 250)
	b := newBall(w, "2", 600, 250)

	w.RemoveBody(a)
	w.RemoveBody(a)

	if w.Label(a) != "" || w.Speed(a) != 0 {
		t.Errorf("removed body still visible")
	}
	if w.Label(b) != "2" {
		t.Errorf("other body lost: label=%q", w.Label(b))
	}
	c := newBall(w, "3", 700, 250)
	if c == a || c == b {
		t.Errorf("handle %d reused", c)
	}
}

func TestStaticPostDeflects(t *testing.T) {
	w := NewWorld(pool.NewTable())
	post := w.CreateBody(pool.BodyWall, pool.WallLabel, pool.NewVec2(500, 250), 10, pool.BodyProps{Restitution: 1})
	ball := newBall(w, "1", 400, 250)

	w.ApplyImpulse(ball, pool.Vec2{X: 5})
	runUntilStopped(t, w, 5000)

	if p := w.Position(post); p.X != 500 || p.Y != 250 {
		t.Errorf("static post moved to %+v", p)
	}
	if x := w.Position(ball).X; x >= 500 {
		t.Errorf("ball passed through the post: x=%.2f", x)
	}
}

func TestDeterministicBreak(t *testing.T) {
	run := func() []pool.Vec2 {
		w := NewWorld(pool.NewTable())
		reg := pool.NewRegistry(w)
		reg.Rack()
		w.ApplyImpulse(reg.Cue().Handle(), pool.Vec2{X: pool.MaxPower})
		runUntilStopped(t, w, 20000)
		var out []pool.Vec2
		for b := range reg.All() {
			out = append(out, w.Position(b.Handle()))
		}
		return out
	}

	first, second := run(), run()
	moved := 0
	rack := pool.RackPositions()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ball %d ended at %+v then %+v", i, first[i], second[i])
		}
		if i > 0 && first[i] != rack[pool.BallID(i)] {
			moved++
		}
	}
	if moved < 5 {
		t.Errorf("break only moved %d balls", moved)
	}
}

func TestNoOverlapAfterBreak(t *testing.T) {
	w := NewWorld(pool.NewTable())
	reg := pool.NewRegistry(w)
	reg.Rack()
	w.ApplyImpulse(reg.Cue().Handle(), pool.Vec2{X: pool.MaxPower})
	runUntilStopped(t, w, 20000)

	var live []pool.BodyHandle
	for b := range reg.Active() {
		if !w.captured(b.Handle()) {
			live = append(live, b.Handle())
		}
	}
	for i, a := range live {
		for _, b := range live[i+1:] {
			if d := w.Position(a).DistanceTo(w.Position(b)); d < 2*pool.BallRadius-0.5 {
				t.Errorf("bodies %d and %d overlap at rest: d=%.2f", a, b, d)
			}
		}
	}
}
