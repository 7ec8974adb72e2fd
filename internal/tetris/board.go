package tetris

import "strings"

// Reference board dimensions.
const (
	DefaultRows = 20
	DefaultCols = 10
)

// Cell is the content of one board square: Empty or a color token.
type Cell uint8

// Empty marks an unoccupied cell.
const Empty Cell = 0

// ColorCount is the number of display colors a piece can take.
// Color tokens are 1..ColorCount.
const ColorCount = 8

// IsEmpty reports whether the cell is unoccupied.
func (c Cell) IsEmpty() bool {
	return c == Empty
}

// Board is a fixed-size grid of cells. Row 0 is the top.
type Board struct {
	rows  int
	cols  int
	cells [][]Cell
}

// NewBoard creates an empty board with the given dimensions.
func NewBoard(rows, cols int) *Board {
	b := &Board{rows: rows, cols: cols}
	b.cells = make([][]Cell, rows)
	for r := range b.cells {
		b.cells[r] = make([]Cell, cols)
	}
	return b
}

// Rows returns the number of rows.
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns.
func (b *Board) Cols() int {
	return b.cols
}

// CellAt returns the cell at (row, col). Callers must bounds-check.
func (b *Board) CellAt(row, col int) Cell {
	return b.cells[row][col]
}

// SetCell writes one cell. Callers must bounds-check.
func (b *Board) SetCell(row, col int, v Cell) {
	b.cells[row][col] = v
}

// IsRowFull reports whether every cell of the row is occupied.
func (b *Board) IsRowFull(row int) bool {
	for _, c := range b.cells[row] {
		if c.IsEmpty() {
			return false
		}
	}
	return true
}

// FullRows returns the indices of all full rows, top to bottom.
func (b *Board) FullRows() []int {
	var full []int
	for r := 0; r < b.rows; r++ {
		if b.IsRowFull(r) {
			full = append(full, r)
		}
	}
	return full
}

// ClearCompletedLines removes every full row and shifts the rows above
// them down, filling the top with empty rows. Returns the number of rows
// removed.
//
// Full rows are collected first and collapsed as one batch, so adjacent or
// separated full rows are all removed regardless of how many there are.
func (b *Board) ClearCompletedLines() int {
	full := b.FullRows()
	if len(full) == 0 {
		return 0
	}

	// Walk bottom-up, copying surviving rows to the write cursor.
	write := b.rows - 1
	for read := b.rows - 1; read >= 0; read-- {
		if b.IsRowFull(read) {
			continue
		}
		if write != read {
			copy(b.cells[write], b.cells[read])
		}
		write--
	}
	for r := write; r >= 0; r-- {
		clear(b.cells[r])
	}

	return len(full)
}

// Reset empties every cell.
func (b *Board) Reset() {
	for r := range b.cells {
		clear(b.cells[r])
	}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := NewBoard(b.rows, b.cols)
	for r := range b.cells {
		copy(c.cells[r], b.cells[r])
	}
	return c
}

// Equal reports whether two boards have the same dimensions and contents.
func (b *Board) Equal(other *Board) bool {
	if b.rows != other.rows || b.cols != other.cols {
		return false
	}
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// RowStrings renders each row as a string: '.' for empty cells and the
// color token digit for occupied ones.
func (b *Board) RowStrings() []string {
	out := make([]string, b.rows)
	buf := make([]byte, b.cols)
	for r := range b.cells {
		for c, cell := range b.cells[r] {
			if cell.IsEmpty() {
				buf[c] = '.'
			} else {
				buf[c] = '0' + byte(cell)
			}
		}
		out[r] = string(buf)
	}
	return out
}

// String renders the board one row per line.
func (b *Board) String() string {
	return strings.Join(b.RowStrings(), "\n")
}
