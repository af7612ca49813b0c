package term

import (
	"math"

	"github.com/playmatatu/turntable/internal/pool"
)

// Terminal cells are roughly twice as tall as wide, so a 2:1 table needs
// four columns per row to look right.
const cellAspect = 4

// infoLines are drawn below the table: players, power meter and status.
const infoLines = 3

// Layout maps table coordinates to screen cells and back.
type Layout struct {
	Left, Top  int
	Cols, Rows int
}

// NewLayout fits the table into a w x h screen, leaving room for the border
// and the info lines.
func NewLayout(w, h int) Layout {
	maxCols := w - 2
	maxRows := h - 2 - infoLines

	rows := max(min(maxCols/cellAspect, maxRows), 2)
	cols := rows * cellAspect

	return Layout{
		Left: max((w-cols)/2, 1),
		Top:  1,
		Cols: cols,
		Rows: rows,
	}
}

// ToScreen returns the cell that shows table point p.
func (l Layout) ToScreen(p pool.Vec2) (x, y int) {
	x = l.Left + int(math.Round(p.X/pool.TableWidth*float64(l.Cols-1)))
	y = l.Top + int(math.Round(p.Y/pool.TableHeight*float64(l.Rows-1)))
	return x, y
}

// ToTable returns the table point at the center of cell (x, y). Cells outside
// the table map to points outside it, which is fine for aiming.
func (l Layout) ToTable(x, y int) pool.Vec2 {
	return pool.Vec2{
		X: float64(x-l.Left) / float64(l.Cols-1) * pool.TableWidth,
		Y: float64(y-l.Top) / float64(l.Rows-1) * pool.TableHeight,
	}
}

// Contains reports whether (x, y) is a table cell.
func (l Layout) Contains(x, y int) bool {
	return x >= l.Left && x < l.Left+l.Cols && y >= l.Top && y < l.Top+l.Rows
}
