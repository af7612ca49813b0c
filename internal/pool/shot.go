package pool

import (
	"log"
	"math"
)

// BeginAim starts an aim (pointer down). It is ignored unless the table is idle.
func (s *Session) BeginAim() {
	if s.turn.Phase != PhaseIdle {
		return
	}
	s.turn.Phase = PhaseAiming
	s.turn.FirstHit = NoBall
	s.aim = aimState{}
	s.emit(Event{Kind: EventPowerMeter, Visible: true})
}

// UpdateAim recomputes the aim from the cue ball to the pointer (pointer move).
// Power grows linearly with drag distance up to PowerScale.
func (s *Session) UpdateAim(pointer Vec2) {
	if s.turn.Phase != PhaseAiming {
		return
	}
	cue := s.registry.Cue()
	if cue == nil || !cue.OnTable() {
		return
	}

	origin := s.oracle.Position(cue.handle)
	power := math.Min(origin.DistanceTo(pointer)/PowerScale, 1)
	s.aim = aimState{set: true, pointer: pointer, power: power}
	s.emit(Event{Kind: EventPowerMeter, Visible: true, Fraction: power})
}

// CommitShot fires the cue ball away from the pointer (pointer up). A shot
// with no usable direction leaves the session aiming and reports false.
func (s *Session) CommitShot() bool {
	if s.turn.Phase != PhaseAiming {
		return false
	}
	cue := s.registry.Cue()
	if cue == nil || !cue.OnTable() || !s.aim.set {
		return false
	}

	origin := s.oracle.Position(cue.handle)
	dir := origin.Minus(s.aim.pointer)
	if dir.IsZero() || s.aim.power == 0 {
		return false
	}

	impulse := dir.Normalize().Times(s.aim.power * MaxPower)
	s.oracle.ApplyImpulse(cue.handle, impulse)

	s.turn.Phase = PhaseBallsInMotion
	s.turn.ShotNumber++
	s.turn.LastShooter = s.turn.Current
	s.emit(Event{Kind: EventCueStrike, Player: s.turn.Current})
	s.emit(Event{Kind: EventPowerMeter, Visible: false})

	log.Printf("[POOL] Shot #%d by player %d, power=%.2f impulse=(%.2f, %.2f)",
		s.turn.ShotNumber, s.turn.Current, s.aim.power, impulse.X, impulse.Y)

	s.aim = aimState{}
	return true
}
