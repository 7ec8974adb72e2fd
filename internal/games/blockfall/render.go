package blockfall

import (
	"fmt"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/tetris"
)

const (
	cellWidth  = 2  // Each board cell is two characters wide
	panelWidth = 16 // Side panel with next piece and stats
	panelGap   = 2
	previewDim = 4 // Largest shape is 4x4
)

// layout positions the well and side panel on the screen.
type layout struct {
	screenW, screenH int
	wellX, wellY     int
	wellW, wellH     int // Including the border
	panelX           int
	tooSmall         bool
}

// newLayout centers a rows×cols well plus side panel on a w×h screen.
func newLayout(r tetris.Rules, w, h int) layout {
	l := layout{
		screenW: w,
		screenH: h,
		wellW:   r.Cols*cellWidth + 2,
		wellH:   r.Rows + 2,
	}

	total := core.NewRect(0, 0, l.wellW+panelGap+panelWidth, l.wellH+1) // +1 for the title line
	if !total.Fits(w, h) {
		l.tooSmall = true
		return l
	}

	total = total.CenterIn(w, h)
	l.wellX = total.X
	l.wellY = total.Y + 1
	l.panelX = l.wellX + l.wellW + panelGap
	return l
}

// overlay is a two-line banner drawn over the well.
type overlay struct {
	title, hint string
}

// blockColor returns the display color for a color token.
func blockColor(c tetris.Cell) core.Color {
	if c.IsEmpty() || int(c) > len(core.PieceColors) {
		return core.ColorWhite
	}
	return core.PieceColors[c-1]
}

// renderSession draws the well, the falling piece, the side panel and an
// optional banner.
func renderSession(dst *core.Screen, l layout, s *tetris.Session, title string, banner overlay) {
	dst.Clear()

	if l.tooSmall {
		renderTooSmall(dst, l)
		return
	}

	// Title
	dst.DrawTextColored(l.wellX+(l.wellW-len(title))/2, l.wellY-1, title, core.ColorBrightWhite)

	renderWell(dst, l, s)
	renderPanel(dst, l, s)

	if banner.title != "" {
		renderOverlay(dst, l, banner)
	}
}

// renderTooSmall shows a "window too small" message.
func renderTooSmall(dst *core.Screen, l layout) {
	y := l.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// drawBlock paints one board cell at board coordinates.
func drawBlock(dst *core.Screen, x, y int, c core.Color) {
	dst.SetColored(x, y, '█', c)
	dst.SetColored(x+1, y, '█', c)
}

// renderWell draws the border, the locked cells and the falling piece.
func renderWell(dst *core.Screen, l layout, s *tetris.Session) {
	dst.DrawBox(core.NewRect(l.wellX, l.wellY, l.wellW, l.wellH), core.ColorGray)

	originX := l.wellX + 1
	originY := l.wellY + 1

	for row := 0; row < s.Rows(); row++ {
		for col := 0; col < s.Cols(); col++ {
			x := originX + col*cellWidth
			y := originY + row
			if c := s.CellAt(row, col); !c.IsEmpty() {
				drawBlock(dst, x, y, blockColor(c))
				continue
			}
			dst.SetColored(x+1, y, '·', core.ColorGray)
		}
	}

	if s.GameOver() {
		return
	}

	// Cells above the top row stay hidden
	cur := s.Current()
	for _, p := range cur.Cells() {
		if p.Row < 0 {
			continue
		}
		drawBlock(dst, originX+p.Col*cellWidth, originY+p.Row, blockColor(cur.Color()))
	}
}

// renderPanel draws the next-piece preview and the stats.
func renderPanel(dst *core.Screen, l layout, s *tetris.Session) {
	x := l.panelX
	y := l.wellY

	// Next piece preview
	boxW := previewDim*cellWidth + 2
	boxH := previewDim + 2
	dst.DrawBox(core.NewRect(x, y, boxW, boxH), core.ColorGray)
	dst.DrawTextColored(x+2, y, " NEXT ", core.ColorBrightWhite)

	next := s.Next()
	occ := next.Occupancy()
	for r := range occ {
		for c, filled := range occ[r] {
			if filled {
				drawBlock(dst, x+1+c*cellWidth, y+1+r, blockColor(next.Color()))
			}
		}
	}

	// Stats
	y += boxH + 1
	stats := []string{
		fmt.Sprintf("Score  %d", s.Score()),
		fmt.Sprintf("Level  %d", s.Level()),
		fmt.Sprintf("Lines  %d", s.Lines()),
		fmt.Sprintf("Speed  %dms", s.FallInterval().Milliseconds()),
	}
	for i, line := range stats {
		dst.DrawText(x, y+i*2, line)
	}
}

// renderOverlay draws a centered banner over the well.
func renderOverlay(dst *core.Screen, l layout, o overlay) {
	boxW := max(len(o.title), len(o.hint)) + 4
	boxW = min(boxW, l.wellW)
	box := core.NewRect(0, 0, boxW, 4).CenterIn(l.wellW, l.wellH)
	box.X += l.wellX
	box.Y += l.wellY

	dst.DrawRect(box, ' ')
	dst.DrawBox(box, core.ColorBrightYellow)
	dst.DrawTextColored(box.X+(box.W-len(o.title))/2, box.Y+1, o.title, core.ColorBrightYellow)
	dst.DrawText(box.X+(box.W-len(o.hint))/2, box.Y+2, o.hint)
}
