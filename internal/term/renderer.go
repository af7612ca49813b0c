package term

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/playmatatu/turntable/internal/pool"
)

var (
	feltStyle   = tcell.StyleDefault.Background(tcell.ColorDarkGreen)
	railStyle   = tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	pocketStyle = feltStyle.Foreground(tcell.ColorBlack)
	aimStyle    = feltStyle.Foreground(tcell.ColorWhite).Dim(true)
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	powerStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	foulStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// ballColors is indexed by ball number mod 8; stripes reuse their solid's color.
var ballColors = [8]tcell.Color{
	tcell.ColorBlack, // 8
	tcell.ColorYellow,
	tcell.ColorBlue,
	tcell.ColorRed,
	tcell.ColorPurple,
	tcell.ColorOrange,
	tcell.ColorLime,
	tcell.ColorMaroon,
}

// BallGlyph returns the rune and color used to draw a ball.
func BallGlyph(id pool.BallID) (rune, tcell.Color) {
	switch {
	case id.IsCue():
		return '●', tcell.ColorWhite
	case id == pool.EightBall:
		return '●', tcell.ColorBlack
	case pool.GroupOf(id) == pool.GroupStripe:
		return '◍', ballColors[id.Number()%8]
	}
	return '●', ballColors[id.Number()%8]
}

// Renderer draws snapshots to a tcell screen. It is a pool.Bridge and must be
// called from the goroutine that owns the screen.
type Renderer struct {
	screen  tcell.Screen
	table   *pool.Table
	layout  Layout
	aim     *pool.Vec2
	last    pool.Snapshot
	lastMsg string
}

func NewRenderer(screen tcell.Screen, table *pool.Table) *Renderer {
	r := &Renderer{screen: screen, table: table}
	r.Resize()
	return r
}

// Resize recomputes the layout from the current screen size.
func (r *Renderer) Resize() {
	w, h := r.screen.Size()
	r.layout = NewLayout(w, h)
}

func (r *Renderer) Layout() Layout { return r.layout }

// SetAim sets the pointer to draw the aim line from, or nil to hide it.
func (r *Renderer) SetAim(p *pool.Vec2) { r.aim = p }

// Present keeps the latest snapshot and redraws.
func (r *Renderer) Present(snap pool.Snapshot, events []pool.Event) {
	r.last = snap
	for _, ev := range events {
		if ev.Kind == pool.EventFoul {
			r.lastMsg = ev.Message
		}
		if ev.Kind == pool.EventCueStrike {
			r.lastMsg = ""
		}
	}
	r.Draw()
}

// Draw renders the last snapshot.
func (r *Renderer) Draw() {
	r.screen.Clear()
	r.drawTable()
	r.drawAim()
	r.drawBalls()
	r.drawInfo()
	r.screen.Show()
}

func (r *Renderer) drawTable() {
	l := r.layout
	for y := l.Top; y < l.Top+l.Rows; y++ {
		for x := l.Left; x < l.Left+l.Cols; x++ {
			r.screen.SetContent(x, y, ' ', nil, feltStyle)
		}
	}

	left, right := l.Left-1, l.Left+l.Cols
	top, bottom := l.Top-1, l.Top+l.Rows
	for x := left + 1; x < right; x++ {
		r.screen.SetContent(x, top, '═', nil, railStyle)
		r.screen.SetContent(x, bottom, '═', nil, railStyle)
	}
	for y := top + 1; y < bottom; y++ {
		r.screen.SetContent(left, y, '║', nil, railStyle)
		r.screen.SetContent(right, y, '║', nil, railStyle)
	}
	r.screen.SetContent(left, top, '╔', nil, railStyle)
	r.screen.SetContent(right, top, '╗', nil, railStyle)
	r.screen.SetContent(left, bottom, '╚', nil, railStyle)
	r.screen.SetContent(right, bottom, '╝', nil, railStyle)

	for _, p := range r.table.Pockets() {
		x, y := l.ToScreen(p.Center)
		r.screen.SetContent(x, y, '◯', nil, pocketStyle)
	}
}

func (r *Renderer) drawAim() {
	if r.aim == nil || r.last.Phase != pool.PhaseAiming {
		return
	}
	cue, ok := r.cuePosition()
	if !ok {
		return
	}
	dir := cue.Minus(*r.aim)
	if dir.IsZero() {
		return
	}
	dir = dir.Normalize()
	length := 60 + r.last.Power*pool.PowerScale
	for d := pool.BallRadius * 2; d <= length; d += pool.BallRadius {
		x, y := r.layout.ToScreen(cue.Plus(dir.Times(d)))
		if r.layout.Contains(x, y) {
			r.screen.SetContent(x, y, '·', nil, aimStyle)
		}
	}
}

func (r *Renderer) cuePosition() (pool.Vec2, bool) {
	for _, b := range r.last.Balls {
		if b.ID.IsCue() && !b.Pocketed {
			return pool.Vec2{X: b.X, Y: b.Y}, true
		}
	}
	return pool.Vec2{}, false
}

func (r *Renderer) drawBalls() {
	for _, b := range r.last.Balls {
		if b.Pocketed {
			continue
		}
		x, y := r.layout.ToScreen(pool.Vec2{X: b.X, Y: b.Y})
		if !r.layout.Contains(x, y) {
			continue
		}
		glyph, color := BallGlyph(b.ID)
		r.screen.SetContent(x, y, glyph, nil, feltStyle.Foreground(color))
	}
}

func (r *Renderer) drawInfo() {
	l := r.layout
	y := l.Top + l.Rows + 1

	var players []string
	for _, p := range r.last.Players {
		marker := " "
		if p.Seat == r.last.CurrentPlayer {
			marker = "▶"
		}
		players = append(players, fmt.Sprintf("%s P%d %s %d/%d", marker, p.Seat, p.Group, p.Score, pool.BallsPerGroup))
	}
	drawText(r.screen, l.Left, y, textStyle, strings.Join(players, "   "))

	if r.last.Phase == pool.PhaseAiming {
		drawText(r.screen, l.Left, y+1, powerStyle, PowerBar(r.last.Power, 20))
	} else if r.lastMsg != "" {
		drawText(r.screen, l.Left, y+1, foulStyle, r.lastMsg)
	}

	drawText(r.screen, l.Left, y+2, textStyle, r.last.Status)
}

// PowerBar renders a meter like "Power [#####-----]  50%".
func PowerBar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	return fmt.Sprintf("Power [%s%s] %3d%%",
		strings.Repeat("#", filled), strings.Repeat("-", width-filled), int(fraction*100+0.5))
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, ch := range text {
		s.SetContent(x, y, ch, nil, style)
		x++
	}
}
