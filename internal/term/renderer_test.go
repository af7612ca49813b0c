package term

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/playmatatu/turntable/internal/pool"
)

func TestLayoutKeepsAspect(t *testing.T) {
	l := NewLayout(120, 40)
	if l.Cols != l.Rows*cellAspect {
		t.Errorf("expected cols = rows*%d, got %dx%d", cellAspect, l.Cols, l.Rows)
	}
	if l.Left < 1 || l.Left+l.Cols+1 > 120 {
		t.Errorf("table with border does not fit: left=%d cols=%d", l.Left, l.Cols)
	}
	if l.Top+l.Rows+1+infoLines > 40 {
		t.Errorf("info lines do not fit: top=%d rows=%d", l.Top, l.Rows)
	}
}

func TestLayoutCorners(t *testing.T) {
	l := NewLayout(100, 30)

	x, y := l.ToScreen(pool.Vec2{X: 0, Y: 0})
	if x != l.Left || y != l.Top {
		t.Errorf("top-left maps to (%d,%d), want (%d,%d)", x, y, l.Left, l.Top)
	}
	x, y = l.ToScreen(pool.Vec2{X: pool.TableWidth, Y: pool.TableHeight})
	if x != l.Left+l.Cols-1 || y != l.Top+l.Rows-1 {
		t.Errorf("bottom-right maps to (%d,%d)", x, y)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l := NewLayout(100, 30)
	for y := l.Top; y < l.Top+l.Rows; y++ {
		for x := l.Left; x < l.Left+l.Cols; x++ {
			p := l.ToTable(x, y)
			gx, gy := l.ToScreen(p)
			if gx != x || gy != y {
				t.Fatalf("cell (%d,%d) -> %v -> (%d,%d)", x, y, p, gx, gy)
			}
		}
	}
}

func TestToTableOutsideIsOffTable(t *testing.T) {
	l := NewLayout(100, 30)
	p := l.ToTable(l.Left-1, l.Top-1)
	if p.X >= 0 || p.Y >= 0 {
		t.Errorf("expected negative coordinates, got %v", p)
	}
}

func TestPowerBar(t *testing.T) {
	cases := map[float64]string{
		0:   "Power [----------]   0%",
		0.5: "Power [#####-----]  50%",
		1:   "Power [##########] 100%",
		2:   "Power [##########] 100%",
	}
	for f, want := range cases {
		if got := PowerBar(f, 10); got != want {
			t.Errorf("PowerBar(%v) = %q, want %q", f, got, want)
		}
	}
}

func TestBallGlyph(t *testing.T) {
	if _, c := BallGlyph(pool.Cue); c != tcell.ColorWhite {
		t.Errorf("cue should be white")
	}
	solid, sc := BallGlyph(3)
	stripe, stc := BallGlyph(11)
	if solid == stripe {
		t.Errorf("solids and stripes should use different glyphs")
	}
	if sc != stc {
		t.Errorf("ball 11 should share ball 3's color")
	}
}

func readRow(s tcell.SimulationScreen, y, from, width int) string {
	var b strings.Builder
	for x := from; x < from+width; x++ {
		ch, _, _, _ := s.GetContent(x, y)
		b.WriteRune(ch)
	}
	return b.String()
}

func TestRendererDrawsSnapshot(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(100, 30)

	table := pool.NewTable()
	r := NewRenderer(screen, table)
	l := r.Layout()

	snap := pool.Snapshot{
		CurrentPlayer: 1,
		Phase:         pool.PhaseIdle,
		Status:        "Player 1's Turn - Aim and shoot!",
		Players:       [2]pool.PlayerView{{Seat: 1}, {Seat: 2}},
		Balls: []pool.BallView{
			{ID: pool.Cue, X: pool.BreakSpot.X, Y: pool.BreakSpot.Y},
			{ID: pool.EightBall, X: 700, Y: 250},
			{ID: 5, X: 10, Y: 10, Pocketed: true},
		},
	}
	r.Present(snap, nil)

	cx, cy := l.ToScreen(pool.BreakSpot)
	ch, _, style, _ := screen.GetContent(cx, cy)
	if ch != '●' {
		t.Errorf("expected cue glyph at (%d,%d), got %q", cx, cy, ch)
	}
	if fg, _, _ := style.Decompose(); fg != tcell.ColorWhite {
		t.Errorf("expected white cue, got %v", fg)
	}

	px, py := l.ToScreen(table.Pockets()[0].Center)
	if ch, _, _, _ := screen.GetContent(px, py); ch != '◯' {
		t.Errorf("expected pocket at top-left, got %q", ch)
	}

	statusY := l.Top + l.Rows + 3
	if row := readRow(screen, statusY, l.Left, len(snap.Status)); row != snap.Status {
		t.Errorf("status row = %q", row)
	}
}

func TestRendererShowsAimAndPower(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(100, 30)

	r := NewRenderer(screen, pool.NewTable())
	l := r.Layout()
	pointer := pool.BreakSpot.Minus(pool.Vec2{X: 100})
	r.SetAim(&pointer)
	r.Present(pool.Snapshot{
		CurrentPlayer: 1,
		Phase:         pool.PhaseAiming,
		Power:         0.5,
		Players:       [2]pool.PlayerView{{Seat: 1}, {Seat: 2}},
		Balls:         []pool.BallView{{ID: pool.Cue, X: pool.BreakSpot.X, Y: pool.BreakSpot.Y}},
	}, nil)

	// the line runs away from the pointer, towards +x
	cx, cy := l.ToScreen(pool.BreakSpot)
	dots := 0
	for x := cx + 1; x < l.Left+l.Cols; x++ {
		if ch, _, _, _ := screen.GetContent(x, cy); ch == '·' {
			dots++
		}
	}
	if dots == 0 {
		t.Error("expected aim dots to the right of the cue ball")
	}

	powerY := l.Top + l.Rows + 2
	if row := readRow(screen, powerY, l.Left, 6); row != "Power " {
		t.Errorf("power row = %q", row)
	}
}
