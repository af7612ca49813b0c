package pool

// BodyHandle references a body owned by a MotionOracle.
type BodyHandle int

// BodyKind selects how the oracle treats a body.
type BodyKind int

const (
	BodyBall BodyKind = iota
	BodyWall          // static, never moves
)

// WallLabel is the label every cushion body carries.
const WallLabel = "wall"

// BodyProps are the physical properties handed to the oracle on creation.
type BodyProps struct {
	Mass        float64
	Restitution float64
	Friction    float64
	FrictionAir float64
}

// Contact is a pair of bodies that started touching during one simulation tick.
type Contact struct {
	A BodyHandle
	B BodyHandle
}

// MotionOracle simulates rigid-body motion. The rule engine only reads
// positions and speeds from it, applies impulses and drains contacts.
type MotionOracle interface {
	CreateBody(kind BodyKind, label string, pos Vec2, radius float64, props BodyProps) BodyHandle
	RemoveBody(h BodyHandle)
	ApplyImpulse(h BodyHandle, impulse Vec2)
	Position(h BodyHandle) Vec2
	Speed(h BodyHandle) float64
	Label(h BodyHandle) string
	// Step advances one simulation tick and returns the contacts that began during it.
	Step() []Contact
}
