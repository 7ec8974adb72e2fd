package tetris

// SpawnColumn is the reference anchor column for newly spawned pieces.
const SpawnColumn = 3

// Point is an absolute board coordinate.
type Point struct {
	Row, Col int
}

// Piece is the falling polyomino: a shape in one rotation state, anchored at
// (col, row) with a color. The anchor is the top-left corner of the shape's
// occupancy grid; row is negative while the piece enters from above.
type Piece struct {
	shape    *Shape
	rotation int
	col      int
	row      int
	color    Cell
}

// NewPiece places a shape at the spawn column, one bounding box above the
// visible board.
func NewPiece(shape *Shape, color Cell, spawnCol int) Piece {
	return Piece{
		shape: shape,
		col:   spawnCol,
		row:   -shape.Size(),
		color: color,
	}
}

// Shape returns the piece's shape.
func (p Piece) Shape() *Shape {
	return p.shape
}

// Rotation returns the current rotation index.
func (p Piece) Rotation() int {
	return p.rotation
}

// Col returns the anchor column.
func (p Piece) Col() int {
	return p.col
}

// Row returns the anchor row.
func (p Piece) Row() int {
	return p.row
}

// Color returns the piece's color token.
func (p Piece) Color() Cell {
	return p.color
}

// Occupancy returns the grid of the current rotation.
func (p Piece) Occupancy() Grid {
	return p.shape.Occupancy(p.rotation)
}

// Cells returns the absolute coordinates of every occupied cell.
func (p Piece) Cells() []Point {
	g := p.Occupancy()
	cells := make([]Point, 0, 4)
	for r, row := range g {
		for c, filled := range row {
			if filled {
				cells = append(cells, Point{Row: p.row + r, Col: p.col + c})
			}
		}
	}
	return cells
}

// CollidesAt reports whether grid g, offset by (dCol, dRow) from the anchor,
// would hit a wall, the floor or an occupied cell. Cells above the board
// (negative rows) never collide.
func (p Piece) CollidesAt(b *Board, dCol, dRow int, g Grid) bool {
	for r, row := range g {
		for c, filled := range row {
			if !filled {
				continue
			}
			x := p.col + c + dCol
			y := p.row + r + dRow

			if x < 0 || x >= b.Cols() || y >= b.Rows() {
				return true
			}
			if y < 0 {
				continue
			}
			if !b.CellAt(y, x).IsEmpty() {
				return true
			}
		}
	}
	return false
}

// AttemptMove shifts the piece by (dCol, dRow) if the target is free.
// Returns false and leaves the piece unchanged when blocked.
func (p *Piece) AttemptMove(b *Board, dCol, dRow int) bool {
	if p.CollidesAt(b, dCol, dRow, p.Occupancy()) {
		return false
	}
	p.col += dCol
	p.row += dRow
	return true
}

// AttemptRotate advances to the next rotation state. When the rotated grid
// collides in place, the piece is kicked one column toward the board's
// center and tested again. Returns false and leaves the piece unchanged if
// both positions are blocked.
func (p *Piece) AttemptRotate(b *Board) bool {
	next := (p.rotation + 1) % p.shape.RotationCount()
	g := p.shape.Occupancy(next)

	kick := 0
	if p.CollidesAt(b, 0, 0, g) {
		if p.col > b.Cols()/2 {
			kick = -1
		} else {
			kick = 1
		}
	}

	if p.CollidesAt(b, kick, 0, g) {
		return false
	}
	p.col += kick
	p.rotation = next
	return true
}

// LockInto writes the piece's color into the board. If any occupied cell is
// still above the board, writing stops at that cell and toppedOut is true.
func (p Piece) LockInto(b *Board) (toppedOut bool) {
	for _, pt := range p.Cells() {
		if pt.Row < 0 {
			return true
		}
		b.SetCell(pt.Row, pt.Col, p.color)
	}
	return false
}
