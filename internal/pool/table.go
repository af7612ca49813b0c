package pool

// Pocket is one of the six capture circles on the table.
type Pocket struct {
	ID     int     `json:"id"`
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

// Rail is one straight cushion of the table boundary.
type Rail struct {
	Name   string `json:"name"`
	From   Vec2   `json:"from"`
	To     Vec2   `json:"to"`
	Normal Vec2   `json:"normal"` // points into the playing surface
}

// Table holds the static table geometry. It is never mutated after NewTable.
type Table struct {
	width   float64
	height  float64
	pockets []Pocket
	rails   []Rail
}

// NewTable builds the standard rectangle with four corner and two side pockets.
func NewTable() *Table {
	w, h := TableWidth, TableHeight

	pockets := []Pocket{
		{ID: 0, Center: Vec2{X: 0, Y: 0}, Radius: PocketRadius},
		{ID: 1, Center: Vec2{X: w / 2, Y: 0}, Radius: PocketRadius},
		{ID: 2, Center: Vec2{X: w, Y: 0}, Radius: PocketRadius},
		{ID: 3, Center: Vec2{X: 0, Y: h}, Radius: PocketRadius},
		{ID: 4, Center: Vec2{X: w / 2, Y: h}, Radius: PocketRadius},
		{ID: 5, Center: Vec2{X: w, Y: h}, Radius: PocketRadius},
	}

	rails := []Rail{
		{Name: "top", From: Vec2{X: 0, Y: 0}, To: Vec2{X: w, Y: 0}, Normal: Vec2{X: 0, Y: 1}},
		{Name: "bottom", From: Vec2{X: 0, Y: h}, To: Vec2{X: w, Y: h}, Normal: Vec2{X: 0, Y: -1}},
		{Name: "left", From: Vec2{X: 0, Y: 0}, To: Vec2{X: 0, Y: h}, Normal: Vec2{X: 1, Y: 0}},
		{Name: "right", From: Vec2{X: w, Y: 0}, To: Vec2{X: w, Y: h}, Normal: Vec2{X: -1, Y: 0}},
	}

	return &Table{width: w, height: h, pockets: pockets, rails: rails}
}

func (t *Table) Width() float64  { return t.width }
func (t *Table) Height() float64 { return t.height }

// Pockets returns a copy of the pocket list.
func (t *Table) Pockets() []Pocket {
	out := make([]Pocket, len(t.pockets))
	copy(out, t.pockets)
	return out
}

// Rails returns a copy of the cushion list.
func (t *Table) Rails() []Rail {
	out := make([]Rail, len(t.rails))
	copy(out, t.rails)
	return out
}

// IsInPocket is true iff pos lies strictly inside the pocket's capture radius.
func (t *Table) IsInPocket(pos Vec2, p Pocket) bool {
	return pos.DistanceTo(p.Center) < p.Radius
}

// PocketAt returns the first pocket containing pos.
func (t *Table) PocketAt(pos Vec2) (Pocket, bool) {
	for _, p := range t.pockets {
		if t.IsInPocket(pos, p) {
			return p, true
		}
	}
	return Pocket{}, false
}

// Contains reports whether pos is on the playing surface, rails included.
func (t *Table) Contains(pos Vec2) bool {
	return pos.X >= 0 && pos.X <= t.width && pos.Y >= 0 && pos.Y <= t.height
}
