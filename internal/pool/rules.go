package pool

import (
	"fmt"
	"log"
)

// Foul reasons published as status messages.
const (
	FoulScratch      = "Foul! Scratch."
	FoulWrongBall    = "Foul! Wrong ball pocketed."
	FoulNoHit        = "Foul! No ball was hit."
	FoulOpponentBall = "Foul! Hit opponent's ball first."
)

// restOutcome reports what pocket resolution did to the turn.
type restOutcome struct {
	gameOver bool
	fouled   bool
}

// observeContacts records the first cue-ball contact with a numbered ball.
func (s *Session) observeContacts(contacts []Contact) {
	for _, c := range contacts {
		la, lb := s.oracle.Label(c.A), s.oracle.Label(c.B)
		if la == WallLabel || lb == WallLabel {
			continue
		}
		s.emit(Event{Kind: EventHitSound})

		if s.turn.FirstHit != NoBall {
			continue
		}
		a, okA := ParseLabel(la)
		b, okB := ParseLabel(lb)
		if !okA || !okB {
			continue
		}
		switch {
		case a == Cue && b.IsNumbered():
			s.turn.FirstHit = b
		case b == Cue && a.IsNumbered():
			s.turn.FirstHit = a
		}
	}
}

// atRest is true once every ball on the table is at or below RestSpeed.
func (s *Session) atRest() bool {
	for b := range s.registry.Active() {
		if s.oracle.Speed(b.handle) > RestSpeed {
			return false
		}
	}
	return true
}

// resolveRest closes out a shot once the balls have stopped.
func (s *Session) resolveRest() {
	s.turn.Phase = PhaseIdle

	var out restOutcome
	if s.opts.PocketPolicy == PocketPolicyAll {
		out = s.resolveAllPockets()
	} else {
		out = s.resolveFirstPocket()
	}
	if out.gameOver {
		return
	}

	if !out.fouled {
		out.fouled = s.checkFirstHit()
	}
	if !out.fouled {
		s.turn.ConsecutiveFouls = 0
	}

	log.Printf("[POOL] Shot #%d resolved, firstHit=%s foul=%v next=%d",
		s.turn.ShotNumber, s.turn.FirstHit, out.fouled, s.turn.Current)
}

// resolveFirstPocket handles at most one pocket event per rest cycle. A
// scratch wins over everything else and ends resolution for this cycle.
func (s *Session) resolveFirstPocket() restOutcome {
	if s.cueInPocket() {
		s.scratch()
		return restOutcome{fouled: true}
	}

	for b := range s.registry.Active() {
		if b.ID == Cue || !s.inAnyPocket(b) {
			continue
		}
		s.pocket(b.ID)
		return s.judgePocketed(b.ID)
	}
	return restOutcome{}
}

// resolveAllPockets takes every pocketed ball off the table and judges the
// whole shot for the shooter. Only the shooter's own group scores, and it is
// counted before the eight is judged. The turn switches at most once.
func (s *Session) resolveAllPockets() restOutcome {
	scratched := s.cueInPocket()

	var potted []BallID
	for b := range s.registry.Active() {
		if b.ID != Cue && s.inAnyPocket(b) {
			potted = append(potted, b.ID)
		}
	}
	for _, id := range potted {
		s.pocket(id)
	}

	shooter := s.current()
	eight := false
	wrong := false
	for _, id := range potted {
		if id == EightBall {
			eight = true
			continue
		}
		if !scratched {
			s.assignGroups(id)
		}
		if GroupOf(id) == shooter.Group {
			shooter.Score = min(shooter.Score+1, BallsPerGroup)
		} else {
			wrong = true
		}
	}

	if eight {
		s.resolveEightBall(scratched)
		return restOutcome{gameOver: true}
	}

	switch {
	case scratched:
		s.scratch()
		return restOutcome{fouled: true}
	case wrong:
		s.handleFoul(FoulWrongBall)
		return restOutcome{fouled: true}
	case len(potted) > 0:
		s.setStatusf("Player %d pocketed %d ball(s)! Continue playing.", shooter.Seat, len(potted))
	}
	return restOutcome{}
}

// judgePocketed applies the rules for one numbered ball leaving the table.
func (s *Session) judgePocketed(id BallID) restOutcome {
	if id == EightBall {
		s.resolveEightBall(false)
		return restOutcome{gameOver: true}
	}

	s.assignGroups(id)

	p := s.current()
	if GroupOf(id) == p.Group {
		p.Score = min(p.Score+1, BallsPerGroup)
		s.setStatusf("Player %d pocketed a ball! Continue playing.", p.Seat)
		return restOutcome{}
	}
	s.handleFoul(FoulWrongBall)
	return restOutcome{fouled: true}
}

// resolveEightBall ends the game. The shooter wins only with a group assigned
// and all seven of it already down.
func (s *Session) resolveEightBall(scratched bool) {
	p := s.current()
	if p.Group != GroupNone && p.Score == BallsPerGroup && !scratched {
		s.endGame(p.Seat, fmt.Sprintf("Player %d Wins!", p.Seat))
		return
	}
	winner := other(p.Seat)
	s.endGame(winner, fmt.Sprintf("Player %d Wins! (Opponent sunk the 8-ball early)", winner))
}

// assignGroups fixes both players' groups from the first pocketed object ball.
// Later calls are no-ops.
func (s *Session) assignGroups(id BallID) {
	g := GroupOf(id)
	if g != GroupSolid && g != GroupStripe {
		return
	}
	if s.players[0].Group != GroupNone {
		return
	}
	cur, opp := s.current(), s.opponent()
	cur.Group = g
	opp.Group = g.Complement()
	s.emit(Event{Kind: EventGroups, Player: cur.Seat, Message: g.String()})
	s.setStatusf("Player %d is %s", cur.Seat, cur.Group)
	log.Printf("[POOL] Groups assigned: player %d=%s player %d=%s", cur.Seat, cur.Group, opp.Seat, opp.Group)
}

// checkFirstHit fouls a shot that hit nothing, or hit the opponent's group first.
func (s *Session) checkFirstHit() bool {
	if s.turn.FirstHit == NoBall {
		s.handleFoul(FoulNoHit)
		return true
	}
	p := s.current()
	if p.Group == GroupNone {
		return false
	}
	g := GroupOf(s.turn.FirstHit)
	if g != p.Group && g != GroupEight {
		s.handleFoul(FoulOpponentBall)
		return true
	}
	return false
}

func (s *Session) cueInPocket() bool {
	cue := s.registry.Cue()
	if cue == nil || !cue.OnTable() {
		return false
	}
	return s.inAnyPocket(cue)
}

func (s *Session) inAnyPocket(b *Ball) bool {
	_, ok := s.table.PocketAt(s.oracle.Position(b.handle))
	return ok
}

func (s *Session) pocket(id BallID) {
	if s.registry.Remove(id) {
		s.emit(Event{Kind: EventPocketSound, Ball: id})
	}
}

// scratch fouls the shooter and puts a fresh cue ball on the break spot.
func (s *Session) scratch() {
	s.emit(Event{Kind: EventScratchSound})
	s.handleFoul(FoulScratch)
	s.registry.Remove(Cue)
	s.registry.RespawnCue()
}

func (s *Session) handleFoul(reason string) {
	s.emit(Event{Kind: EventFoulSound})
	s.emit(Event{Kind: EventFoul, Message: reason, Player: s.turn.Current})
	s.setStatus(reason)
	s.turn.ConsecutiveFouls++
	log.Printf("[POOL] Foul by player %d: %s (consecutive=%d)", s.turn.Current, reason, s.turn.ConsecutiveFouls)
	s.switchPlayer()
}

func (s *Session) switchPlayer() {
	s.turn.Current = other(s.turn.Current)
	s.turn.FirstHit = NoBall
	s.aim = aimState{}
	s.emit(Event{Kind: EventTurn, Player: s.turn.Current})
	s.setStatusf("Player %d's Turn", s.turn.Current)
}

func (s *Session) endGame(winner int, message string) {
	s.emit(Event{Kind: EventWinSound, Player: winner})
	s.turn.Phase = PhaseGameOver
	s.turn.Winner = winner
	s.aim = aimState{}
	s.setStatus(message)
	log.Printf("[POOL] Game over after shot #%d: %s", s.turn.ShotNumber, message)
}
