package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placed returns a piece of the named shape at an explicit position.
func placed(t *testing.T, name string, rotation, col, row int) Piece {
	t.Helper()
	shape := ShapeByName(name)
	require.NotNil(t, shape, "unknown shape %q", name)
	p := NewPiece(shape, 1, SpawnColumn)
	p.rotation = rotation
	p.col = col
	p.row = row
	return p
}

func TestNewPieceSpawnPosition(t *testing.T) {
	for i := range ShapeCount() {
		s := ShapeAt(i)
		p := NewPiece(s, 5, SpawnColumn)

		assert.Equal(t, 3, p.Col(), "shape %s", s.Name())
		assert.Equal(t, -s.Size(), p.Row(), "shape %s", s.Name())
		assert.Equal(t, 0, p.Rotation())
		assert.Equal(t, Cell(5), p.Color())
	}
}

func TestSpawnNeverCollidesOnEmptyBoard(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	for i := range ShapeCount() {
		p := NewPiece(ShapeAt(i), 1, SpawnColumn)
		assert.False(t, p.CollidesAt(b, 0, 0, p.Occupancy()), "shape %s collides at spawn", p.Shape().Name())
	}
}

func TestCollidesAtBounds(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)

	for i := range ShapeCount() {
		s := ShapeAt(i)
		for r := range s.RotationCount() {
			p := placed(t, s.Name(), r, 3, 5)
			g := p.Occupancy()

			assert.True(t, p.CollidesAt(b, -10, 0, g), "%s/%d left of board", s.Name(), r)
			assert.True(t, p.CollidesAt(b, 10, 0, g), "%s/%d right of board", s.Name(), r)
			assert.True(t, p.CollidesAt(b, 0, DefaultRows, g), "%s/%d below floor", s.Name(), r)
			assert.False(t, p.CollidesAt(b, 0, -30, g), "%s/%d above board must be free", s.Name(), r)
		}
	}
}

func TestCollidesAtAboveBoardStillChecksColumns(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	p := placed(t, "O", 0, 9, -5)

	assert.True(t, p.CollidesAt(b, 0, 0, p.Occupancy()), "column 10 is outside the board even above it")
}

func TestCollidesAtOccupiedCell(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	b.SetCell(10, 4, 2)
	p := placed(t, "O", 0, 3, 8) // rows 8-9, cols 3-4

	assert.False(t, p.CollidesAt(b, 0, 0, p.Occupancy()))
	assert.True(t, p.CollidesAt(b, 0, 1, p.Occupancy()))
	assert.False(t, p.CollidesAt(b, -1, 1, p.Occupancy()), "cols 2-3 miss the cell at col 4")
}

func TestAttemptMove(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)

	t.Run("blocked by wall", func(t *testing.T) {
		p := placed(t, "O", 0, 0, 0)
		before := p

		assert.False(t, p.AttemptMove(b, -1, 0))
		assert.Equal(t, before, p)
	})

	t.Run("blocked by floor", func(t *testing.T) {
		p := placed(t, "O", 0, 4, 18)
		before := p

		assert.False(t, p.AttemptMove(b, 0, 1))
		assert.Equal(t, before, p)
	})

	t.Run("clear moves by exact delta", func(t *testing.T) {
		p := placed(t, "T", 2, 3, 4)

		assert.True(t, p.AttemptMove(b, 1, 0))
		assert.Equal(t, 4, p.Col())
		assert.Equal(t, 4, p.Row())

		assert.True(t, p.AttemptMove(b, -2, 1))
		assert.Equal(t, 2, p.Col())
		assert.Equal(t, 5, p.Row())
		assert.Equal(t, 2, p.Rotation())
	})

	t.Run("blocked by locked cell", func(t *testing.T) {
		blocked := NewBoard(DefaultRows, DefaultCols)
		blocked.SetCell(5, 2, 3)
		p := placed(t, "O", 0, 3, 4) // rows 4-5, cols 3-4
		before := p

		assert.False(t, p.AttemptMove(blocked, -1, 0))
		assert.Equal(t, before, p)
	})
}

func TestAttemptRotateInPlace(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	p := placed(t, "T", 0, 4, 5)

	for want := 1; want <= 4; want++ {
		require.True(t, p.AttemptRotate(b))
		assert.Equal(t, want%4, p.Rotation())
		assert.Equal(t, 4, p.Col(), "no kick expected in open space")
	}
}

func TestAttemptRotateKicksLeftFromRightWall(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	// Vertical I in column 9.
	p := placed(t, "I", 1, 7, 5)

	require.True(t, p.AttemptRotate(b))
	assert.Equal(t, 2, p.Rotation())
	assert.Equal(t, 6, p.Col())
}

func TestAttemptRotateKicksRightFromLeftWall(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	// Vertical I in column 0.
	p := placed(t, "I", 3, -1, 5)

	require.True(t, p.AttemptRotate(b))
	assert.Equal(t, 0, p.Rotation())
	assert.Equal(t, 0, p.Col())
}

func TestAttemptRotateFailsWhenKickBlocked(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	b.SetCell(7, 6, 1) // blocks the kicked horizontal I (row 7, cols 6-9)
	p := placed(t, "I", 1, 7, 5)
	before := p

	assert.False(t, p.AttemptRotate(b))
	assert.Equal(t, before, p)
}

func TestAttemptRotateSingleStateShape(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	p := placed(t, "O", 0, 3, 3)

	assert.True(t, p.AttemptRotate(b))
	assert.Equal(t, 0, p.Rotation())
	assert.Equal(t, 3, p.Col())
}

func TestLockInto(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	p := placed(t, "S", 0, 2, 17) // ".##" / "##." / "..."
	p.color = 7

	assert.False(t, p.LockInto(b))

	want := map[Point]bool{
		{Row: 17, Col: 3}: true,
		{Row: 17, Col: 4}: true,
		{Row: 18, Col: 2}: true,
		{Row: 18, Col: 3}: true,
	}
	for r := range b.Rows() {
		for c := range b.Cols() {
			if want[Point{Row: r, Col: c}] {
				assert.Equal(t, Cell(7), b.CellAt(r, c), "(%d,%d)", r, c)
			} else {
				assert.True(t, b.CellAt(r, c).IsEmpty(), "(%d,%d)", r, c)
			}
		}
	}
}

func TestLockIntoAboveBoardTopsOut(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	p := placed(t, "O", 0, 3, -1) // rows -1..0

	assert.True(t, p.LockInto(b))
	assert.True(t, b.Equal(NewBoard(DefaultRows, DefaultCols)), "no cell is written once the piece tops out")
}

func TestPieceCells(t *testing.T) {
	p := placed(t, "I", 0, 3, -4)

	assert.Equal(t, []Point{
		{Row: -3, Col: 3},
		{Row: -3, Col: 4},
		{Row: -3, Col: 5},
		{Row: -3, Col: 6},
	}, p.Cells())
}
