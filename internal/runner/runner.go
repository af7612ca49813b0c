package runner

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/turntable/internal/pool"
)

// InputKind is the pointer gesture a player sent.
type InputKind string

const (
	InputBeginAim   InputKind = "begin_aim"
	InputUpdateAim  InputKind = "update_aim"
	InputCommitShot InputKind = "commit_shot"
	InputReset      InputKind = "reset"
)

// Input is one queued pointer event. Seat 0 means a local device that may act
// for whoever's turn it is.
type Input struct {
	Kind    InputKind
	Pointer pool.Vec2
	Seat    int
}

// InputBuffer is how many inputs may wait between two ticks.
const InputBuffer = 64

var (
	ErrInputQueueFull = errors.New("input queue full")
	ErrUnknownInput   = errors.New("unknown input kind")
)

// Runner owns a session and drives it at a fixed tick. Inputs arrive on a
// channel from any goroutine and are applied at the start of the next tick,
// so the session itself is only ever touched by the runner goroutine.
type Runner struct {
	session  *pool.Session
	inputs   chan Input
	interval time.Duration

	// OnRest runs after every shot once the balls have stopped.
	OnRest func(pool.Snapshot)
	// OnGameOver runs once when a game ends.
	OnGameOver func(pool.Snapshot)
	// OnReset runs after an accepted reset has racked a new game.
	OnReset func(pool.Snapshot)

	mu       sync.RWMutex
	bridges  []pool.Bridge
	snapshot pool.Snapshot
	dirty    bool
}

func New(session *pool.Session, interval time.Duration) *Runner {
	return &Runner{
		session:  session,
		inputs:   make(chan Input, InputBuffer),
		interval: interval,
		snapshot: session.Snapshot(),
		dirty:    true,
	}
}

// AddBridge registers a presentation bridge. Bridges are called on the runner
// goroutine and must not block for long.
func (r *Runner) AddBridge(b pool.Bridge) {
	r.mu.Lock()
	r.bridges = append(r.bridges, b)
	r.dirty = true
	r.mu.Unlock()
}

// Submit queues an input without blocking.
func (r *Runner) Submit(in Input) error {
	switch in.Kind {
	case InputBeginAim, InputUpdateAim, InputCommitShot, InputReset:
	default:
		return ErrUnknownInput
	}
	select {
	case r.inputs <- in:
		return nil
	default:
		return ErrInputQueueFull
	}
}

// Snapshot returns the state published by the last tick.
func (r *Runner) Snapshot() pool.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Run ticks until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("[RUNNER] Started, tick=%s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[RUNNER] Stopped: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step applies every queued input, advances the session one tick and
// publishes. Run calls it on every tick; tests call it directly.
func (r *Runner) Step() {
	r.applyPending()

	before := r.session.Phase()
	r.session.Tick()
	events := r.session.Drain()
	snap := r.session.Snapshot()

	r.mu.Lock()
	r.snapshot = snap
	publish := r.dirty || len(events) > 0 || snap.Phase == pool.PhaseBallsInMotion
	r.dirty = false
	bridges := append([]pool.Bridge(nil), r.bridges...)
	r.mu.Unlock()

	if publish {
		for _, b := range bridges {
			b.Present(snap, events)
		}
	}

	if before == pool.PhaseBallsInMotion && snap.Phase != pool.PhaseBallsInMotion {
		if r.OnRest != nil {
			r.OnRest(snap)
		}
		if snap.Phase == pool.PhaseGameOver && r.OnGameOver != nil {
			r.OnGameOver(snap)
		}
	}
}

func (r *Runner) applyPending() {
	for {
		select {
		case in := <-r.inputs:
			r.apply(in)
		default:
			return
		}
	}
}

func (r *Runner) apply(in Input) {
	if in.Seat != 0 {
		if in.Kind == InputReset && r.session.Phase() != pool.PhaseGameOver {
			log.Printf("[RUNNER] Dropped reset from seat %d, game still in progress", in.Seat)
			return
		}
		if in.Kind != InputReset && in.Seat != r.session.CurrentPlayer() {
			log.Printf("[RUNNER] Dropped %s from seat %d, player %d to shoot", in.Kind, in.Seat, r.session.CurrentPlayer())
			return
		}
	}

	switch in.Kind {
	case InputBeginAim:
		r.session.BeginAim()
	case InputUpdateAim:
		r.session.UpdateAim(in.Pointer)
	case InputCommitShot:
		if !r.session.CommitShot() {
			log.Printf("[RUNNER] Shot from seat %d ignored (phase=%s)", in.Seat, r.session.Phase())
		}
	case InputReset:
		log.Printf("[RUNNER] Reset requested by seat %d", in.Seat)
		r.session.Reset()
		if r.OnReset != nil {
			r.OnReset(r.session.Snapshot())
		}
	}
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}
