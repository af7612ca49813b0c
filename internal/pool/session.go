package pool

import (
	"fmt"
	"log"
)

// Phase is where the turn state machine currently sits.
type Phase string

const (
	PhaseIdle          Phase = "IDLE"
	PhaseAiming        Phase = "AIMING"
	PhaseBallsInMotion Phase = "BALLS_IN_MOTION"
	PhaseGameOver      Phase = "GAME_OVER"
)

// PocketPolicy decides how many pocketed balls one rest cycle resolves.
type PocketPolicy string

const (
	// PocketPolicyFirst resolves a scratch, or else the first pocketed ball
	// found, and leaves the rest for the next rest cycle.
	PocketPolicyFirst PocketPolicy = "first"
	// PocketPolicyAll resolves every ball found in a pocket, judged for the shooter.
	PocketPolicyAll PocketPolicy = "all"
)

// ParsePocketPolicy falls back to PocketPolicyFirst for unknown values.
func ParsePocketPolicy(s string) PocketPolicy {
	if PocketPolicy(s) == PocketPolicyAll {
		return PocketPolicyAll
	}
	return PocketPolicyFirst
}

// Options tune rule resolution for a session.
type Options struct {
	PocketPolicy PocketPolicy
}

// Player is one seat at the table.
type Player struct {
	Seat  int
	Group Group
	Score int
}

// TurnState is the mutable rule state of a game.
type TurnState struct {
	Current          int
	Phase            Phase
	FirstHit         BallID
	ConsecutiveFouls int
	ShotNumber       int
	LastShooter      int
	Status           string
	Winner           int
}

type aimState struct {
	set     bool
	pointer Vec2
	power   float64
}

// Session is one game of 8-ball. It is not safe for concurrent use: a single
// owner applies inputs and calls Tick in order.
type Session struct {
	table    *Table
	oracle   MotionOracle
	registry *Registry
	opts     Options

	players [2]Player
	turn    TurnState
	aim     aimState
	events  eventQueue
}

// NewSession racks a new game on the given oracle.
func NewSession(oracle MotionOracle, table *Table, opts Options) *Session {
	if opts.PocketPolicy == "" {
		opts.PocketPolicy = PocketPolicyFirst
	}
	s := &Session{
		table:    table,
		oracle:   oracle,
		registry: NewRegistry(oracle),
		opts:     opts,
	}
	s.Reset()
	return s
}

// Reset discards every bit of in-flight state and racks a new game.
func (s *Session) Reset() {
	s.registry.Rack()
	s.players = [2]Player{{Seat: 1}, {Seat: 2}}
	s.turn = TurnState{
		Current:  1,
		Phase:    PhaseIdle,
		FirstHit: NoBall,
	}
	s.aim = aimState{}
	s.events.drain()
	s.setStatus("Player 1's Turn - Aim and shoot!")
	log.Printf("[POOL] New rack, pocket policy=%s", s.opts.PocketPolicy)
}

// Tick advances the oracle one step and runs the rule engine on the result.
// It never blocks: waiting for balls to stop is just Tick being called again.
func (s *Session) Tick() {
	contacts := s.oracle.Step()
	if s.turn.Phase != PhaseBallsInMotion {
		return
	}
	s.observeContacts(contacts)
	if !s.atRest() {
		return
	}
	s.resolveRest()
}

// Drain hands over the events queued since the last call.
func (s *Session) Drain() []Event {
	return s.events.drain()
}

func (s *Session) Table() *Table { return s.table }
func (s *Session) Registry() *Registry { return s.registry }
func (s *Session) Phase() Phase { return s.turn.Phase }
func (s *Session) CurrentPlayer() int { return s.turn.Current }
func (s *Session) Turn() TurnState { return s.turn }
func (s *Session) Power() float64 { return s.aim.power }
func (s *Session) Policy() PocketPolicy { return s.opts.PocketPolicy }
func (s *Session) Player(seat int) Player { return *s.seat(seat) }

// Snapshot captures the state the presentation side draws from.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		CurrentPlayer:    s.turn.Current,
		Phase:            s.turn.Phase,
		Status:           s.turn.Status,
		GameOver:         s.turn.Phase == PhaseGameOver,
		Winner:           s.turn.Winner,
		Power:            s.aim.power,
		ShotNumber:       s.turn.ShotNumber,
		LastShooter:      s.turn.LastShooter,
		ConsecutiveFouls: s.turn.ConsecutiveFouls,
		FirstHit:         s.turn.FirstHit,
	}
	for i, p := range s.players {
		snap.Players[i] = PlayerView{Seat: p.Seat, Group: p.Group, Score: p.Score}
		if p.Group != GroupNone {
			snap.Players[i].Remaining = BallsPerGroup - s.registry.PocketedCount(p.Group)
		}
	}
	for b := range s.registry.All() {
		pos := s.registry.Position(b)
		snap.Balls = append(snap.Balls, BallView{
			ID:       b.ID,
			Label:    b.ID.Label(),
			Group:    b.Group,
			X:        pos.X,
			Y:        pos.Y,
			Pocketed: !b.OnTable(),
		})
	}
	return snap
}

func (s *Session) seat(n int) *Player {
	if n == 2 {
		return &s.players[1]
	}
	return &s.players[0]
}

func (s *Session) current() *Player { return s.seat(s.turn.Current) }
func (s *Session) opponent() *Player { return s.seat(other(s.turn.Current)) }

func other(seat int) int {
	if seat == 1 {
		return 2
	}
	return 1
}

func (s *Session) emit(e Event) {
	s.events.push(e)
}

func (s *Session) setStatus(msg string) {
	s.turn.Status = msg
	s.emit(Event{Kind: EventStatus, Message: msg})
}

func (s *Session) setStatusf(format string, args ...any) {
	s.setStatus(fmt.Sprintf(format, args...))
}
