// Package tetris implements the falling-block simulation: the shape catalog,
// the board, the active piece and the session that drives gravity, locking
// and scoring. It has no knowledge of terminals, keys or wall-clock timers;
// callers feed it commands and timestamps.
package tetris

import "strings"

// Grid is a square occupancy mask. Grid[row][col] is true for filled cells.
type Grid [][]bool

// Size returns the edge length of the grid.
func (g Grid) Size() int {
	return len(g)
}

// String renders the grid with '#' for filled cells and '.' for empty ones.
func (g Grid) String() string {
	var sb strings.Builder
	for r, row := range g {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, filled := range row {
			if filled {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

// Shape is one polyomino family with its precomputed rotation states.
type Shape struct {
	name      string
	rotations []Grid
}

// Name returns the single-letter shape name (I, O, T, S, Z, J, L).
func (s *Shape) Name() string {
	return s.name
}

// RotationCount returns the number of distinct rotation states.
func (s *Shape) RotationCount() int {
	return len(s.rotations)
}

// Occupancy returns the grid of the given rotation state.
// The index wraps, so any non-negative value is accepted.
func (s *Shape) Occupancy(rotation int) Grid {
	return s.rotations[rotation%len(s.rotations)]
}

// Size returns the bounding box edge of the shape.
func (s *Shape) Size() int {
	return s.rotations[0].Size()
}

// grid builds an occupancy mask from rows of '#' and '.'.
func grid(rows ...string) Grid {
	g := make(Grid, len(rows))
	for r, row := range rows {
		g[r] = make([]bool, len(row))
		for c, ch := range row {
			g[r][c] = ch == '#'
		}
	}
	return g
}

// catalog holds the seven shapes. Rotation states are listed clockwise.
var catalog = []*Shape{
	{name: "I", rotations: []Grid{
		grid("....", "####", "....", "...."),
		grid("..#.", "..#.", "..#.", "..#."),
		grid("....", "....", "####", "...."),
		grid(".#..", ".#..", ".#..", ".#.."),
	}},
	{name: "O", rotations: []Grid{
		grid("##", "##"),
	}},
	{name: "T", rotations: []Grid{
		grid("...", "###", ".#."),
		grid(".#.", "##.", ".#."),
		grid(".#.", "###", "..."),
		grid(".#.", ".##", ".#."),
	}},
	{name: "S", rotations: []Grid{
		grid(".##", "##.", "..."),
		grid(".#.", ".##", "..#"),
		grid("...", ".##", "##."),
		grid("#..", "##.", ".#."),
	}},
	{name: "Z", rotations: []Grid{
		grid("##.", ".##", "..."),
		grid("..#", ".##", ".#."),
		grid("...", "##.", ".##"),
		grid(".#.", "##.", "#.."),
	}},
	{name: "J", rotations: []Grid{
		grid("#..", "###", "..."),
		grid(".##", ".#.", ".#."),
		grid("...", "###", "..#"),
		grid(".#.", ".#.", "##."),
	}},
	{name: "L", rotations: []Grid{
		grid("..#", "###", "..."),
		grid(".#.", ".#.", ".##"),
		grid("...", "###", "#.."),
		grid("##.", ".#.", ".#."),
	}},
}

// ShapeCount returns the number of shapes in the catalog.
func ShapeCount() int {
	return len(catalog)
}

// ShapeAt returns the shape at index i (0 <= i < ShapeCount()).
func ShapeAt(i int) *Shape {
	return catalog[i]
}

// ShapeByName looks up a shape by its letter.
// Returns nil if no shape has that name.
func ShapeByName(name string) *Shape {
	for _, s := range catalog {
		if s.name == name {
			return s
		}
	}
	return nil
}
