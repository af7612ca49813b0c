package pool

// Table and shot constants for the turntable game. Distances are in table
// units (the playing surface is TableWidth x TableHeight), speeds in table
// units per simulation tick.

const (
	TableWidth   = 1000.0
	TableHeight  = 500.0
	BallRadius   = 15.0
	PocketRadius = 25.0

	// MaxPower bounds the impulse magnitude of a full-power shot.
	MaxPower = 25.0
	// PowerScale is the drag distance that maps to full power.
	PowerScale = 200.0
	// RestSpeed is the speed at or below which a ball counts as stopped.
	RestSpeed = 0.2

	// RackSpacing is slightly wider than a ball diameter so the rack never starts overlapped.
	RackSpacing = BallRadius * 2.05

	NumBalls      = 16 // cue + 1..15
	BallsPerGroup = 7
)

var (
	// BreakSpot is where the cue ball starts and respawns after a scratch.
	BreakSpot = Vec2{X: 250, Y: TableHeight / 2}
	// RackApex is the front ball of the triangle, facing the cue ball.
	RackApex = Vec2{X: 700, Y: TableHeight / 2}
)

// BallProps are the physical properties every ball body is created with.
var BallProps = BodyProps{
	Mass:        1,
	Restitution: 0.95,
	Friction:    0.005,
	FrictionAir: 0.01,
}
