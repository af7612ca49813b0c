package pool

import (
	"encoding/json"
	"strconv"
)

// BallID identifies a ball: the cue ball or a numbered ball 1..15.
type BallID int

const (
	// NoBall marks an unset ball reference, e.g. no first hit yet this turn.
	NoBall    BallID = -1
	Cue       BallID = 0
	EightBall BallID = 8
)

// Numbered returns the identity of numbered ball n, or false when n is outside 1..15.
func Numbered(n int) (BallID, bool) {
	if n < 1 || n > 15 {
		return NoBall, false
	}
	return BallID(n), true
}

func (id BallID) IsCue() bool { return id == Cue }

// IsNumbered reports whether id is one of the fifteen object balls.
func (id BallID) IsNumbered() bool { return id >= 1 && id <= 15 }

// Number returns the printed number, 0 for the cue ball.
func (id BallID) Number() int {
	if !id.IsNumbered() {
		return 0
	}
	return int(id)
}

// Label is the body label used with the motion oracle.
func (id BallID) Label() string {
	switch {
	case id == Cue:
		return "cue"
	case id.IsNumbered():
		return strconv.Itoa(int(id))
	}
	return ""
}

func (id BallID) String() string {
	if l := id.Label(); l != "" {
		return l
	}
	return "none"
}

// ParseLabel maps an oracle body label back to a ball. Walls and unknown labels return false.
func ParseLabel(label string) (BallID, bool) {
	if label == "cue" {
		return Cue, true
	}
	n, err := strconv.Atoi(label)
	if err != nil {
		return NoBall, false
	}
	return Numbered(n)
}

// Group is the set a ball belongs to, and the set a player is assigned to pursue.
type Group int

const (
	GroupNone Group = iota
	GroupSolid
	GroupStripe
	GroupEight
	GroupCue
)

// GroupOf derives a ball's group from its identity.
func GroupOf(id BallID) Group {
	switch {
	case id == Cue:
		return GroupCue
	case id == EightBall:
		return GroupEight
	case id >= 1 && id <= 7:
		return GroupSolid
	case id >= 9 && id <= 15:
		return GroupStripe
	}
	return GroupNone
}

// Complement returns the other player's group once one side is assigned.
func (g Group) Complement() Group {
	switch g {
	case GroupSolid:
		return GroupStripe
	case GroupStripe:
		return GroupSolid
	}
	return GroupNone
}

func (g Group) String() string {
	switch g {
	case GroupSolid:
		return "Solids"
	case GroupStripe:
		return "Stripes"
	case GroupEight:
		return "Eight"
	case GroupCue:
		return "Cue"
	}
	return "Not Assigned"
}

func (g Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *Group) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Solids":
		*g = GroupSolid
	case "Stripes":
		*g = GroupStripe
	case "Eight":
		*g = GroupEight
	case "Cue":
		*g = GroupCue
	default:
		*g = GroupNone
	}
	return nil
}
