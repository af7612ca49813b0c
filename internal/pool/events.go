package pool

// EventKind names a discrete trigger for the presentation side.
type EventKind string

const (
	EventHitSound     EventKind = "hit_sound"
	EventCueStrike    EventKind = "cue_strike_sound"
	EventPocketSound  EventKind = "pocket_sound"
	EventScratchSound EventKind = "scratch_sound"
	EventFoulSound    EventKind = "foul_sound"
	EventWinSound     EventKind = "win_sound"
	EventPowerMeter   EventKind = "power_meter"
	EventStatus       EventKind = "status"
	EventFoul         EventKind = "foul"
	EventGroups       EventKind = "groups_assigned"
	EventTurn         EventKind = "turn"
)

// Event is one presentation trigger. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind `json:"kind"`
	Message  string    `json:"message,omitempty"`
	Visible  bool      `json:"visible,omitempty"`
	Fraction float64   `json:"fraction,omitempty"`
	Ball     BallID    `json:"ball,omitempty"`
	Player   int       `json:"player,omitempty"`
}

// Bridge consumes the published state once per tick. Implementations render,
// play sounds or forward to remote clients; none of them feed back into the rules.
type Bridge interface {
	Present(snap Snapshot, events []Event)
}

// BridgeFunc adapts a function to Bridge.
type BridgeFunc func(snap Snapshot, events []Event)

func (f BridgeFunc) Present(snap Snapshot, events []Event) { f(snap, events) }

// eventQueue collects triggers during a tick until the owner drains them.
type eventQueue struct {
	events []Event
}

func (q *eventQueue) push(e Event) {
	q.events = append(q.events, e)
}

func (q *eventQueue) drain() []Event {
	out := q.events
	q.events = nil
	return out
}

// PlayerView is the published form of a Player. Remaining counts the
// player's group balls still on the table; balls the opponent pocketed are
// off the table but never scored.
type PlayerView struct {
	Seat      int   `json:"seat"`
	Group     Group `json:"group"`
	Score     int   `json:"score"`
	Remaining int   `json:"remaining"`
}

// BallView is the published form of a Ball.
type BallView struct {
	ID       BallID  `json:"id"`
	Label    string  `json:"label"`
	Group    Group   `json:"group"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pocketed bool    `json:"pocketed"`
}

// Snapshot is everything the presentation side needs to draw one frame.
type Snapshot struct {
	CurrentPlayer    int           `json:"current_player"`
	Phase            Phase         `json:"phase"`
	Players          [2]PlayerView `json:"players"`
	Status           string        `json:"status"`
	GameOver         bool          `json:"game_over"`
	Winner           int           `json:"winner,omitempty"`
	Power            float64       `json:"power"`
	ShotNumber       int           `json:"shot_number"`
	LastShooter      int           `json:"last_shooter,omitempty"`
	ConsecutiveFouls int           `json:"consecutive_fouls"`
	FirstHit         BallID        `json:"first_hit"`
	Balls            []BallView    `json:"balls"`
}
