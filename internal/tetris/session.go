package tetris

import (
	"fmt"
	"math/rand"
	"time"
)

// Command is a discrete player instruction.
type Command int

const (
	MoveLeft Command = iota
	MoveRight
	Rotate
	SoftDrop
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case MoveLeft:
		return "move_left"
	case MoveRight:
		return "move_right"
	case Rotate:
		return "rotate"
	case SoftDrop:
		return "soft_drop"
	default:
		return "unknown"
	}
}

// ParseCommand is the inverse of Command.String.
func ParseCommand(s string) (Command, bool) {
	for c := MoveLeft; c <= SoftDrop; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// MarshalText encodes the command by name.
func (c Command) MarshalText() ([]byte, error) {
	if c < MoveLeft || c > SoftDrop {
		return nil, fmt.Errorf("tetris: unknown command %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a command name.
func (c *Command) UnmarshalText(text []byte) error {
	cmd, ok := ParseCommand(string(text))
	if !ok {
		return fmt.Errorf("tetris: unknown command %q", text)
	}
	*c = cmd
	return nil
}

// Session owns the board, the current and next pieces and the scoring state.
// It is not safe for concurrent use; one controller drives it.
type Session struct {
	rules Rules
	rng   *rand.Rand

	board   *Board
	current Piece
	next    Piece

	score        int
	level        int
	lines        int
	fallInterval time.Duration
	gameOver     bool
	lastTick     time.Time
}

// NewSession creates a session with the given rules and random source.
// Call Start before use.
func NewSession(rules Rules, rng *rand.Rand) *Session {
	return &Session{
		rules: rules,
		rng:   rng,
		board: NewBoard(rules.Rows, rules.Cols),
	}
}

// Start (re)initializes the whole session at time now.
func (s *Session) Start(now time.Time) {
	s.board.Reset()
	s.score = 0
	s.level = 0
	s.lines = 0
	s.fallInterval = s.rules.BaseInterval
	s.gameOver = false
	s.current = s.randomPiece()
	s.next = s.randomPiece()
	s.lastTick = now
}

// randomPiece picks a shape and a color independently and uniformly.
func (s *Session) randomPiece() Piece {
	shape := ShapeAt(s.rng.Intn(ShapeCount()))
	color := Cell(1 + s.rng.Intn(ColorCount))
	return NewPiece(shape, color, s.rules.SpawnColumn)
}

// HandleCommand applies a player command and resets the gravity timer.
// Returns whether the piece moved, rotated or locked. Commands are ignored
// once the game is over.
func (s *Session) HandleCommand(cmd Command, now time.Time) bool {
	if s.gameOver {
		return false
	}

	var applied bool
	switch cmd {
	case MoveLeft:
		applied = s.current.AttemptMove(s.board, -1, 0)
	case MoveRight:
		applied = s.current.AttemptMove(s.board, 1, 0)
	case Rotate:
		applied = s.current.AttemptRotate(s.board)
	case SoftDrop:
		s.stepDown()
		applied = true
	}

	s.lastTick = now
	return applied
}

// OnTick advances gravity by one row if more than the fall interval has
// elapsed since the last step. Returns true if a step was taken.
func (s *Session) OnTick(now time.Time) bool {
	if s.gameOver {
		return false
	}
	if now.Sub(s.lastTick) <= s.fallInterval {
		return false
	}
	s.stepDown()
	s.lastTick = now
	return true
}

// stepDown moves the current piece one row down, locking it when blocked.
func (s *Session) stepDown() {
	if s.current.AttemptMove(s.board, 0, 1) {
		return
	}
	s.lock()
}

// lock commits the current piece, clears lines and promotes the next piece.
func (s *Session) lock() {
	if s.current.LockInto(s.board) {
		s.gameOver = true
		return
	}

	cleared := s.board.ClearCompletedLines()
	for i := 0; i < cleared; i++ {
		s.awardLine()
	}

	s.current = s.next
	s.next = s.randomPiece()
}

// awardLine applies the per-line score, level and fall-speed update.
func (s *Session) awardLine() {
	s.score += s.rules.PointsPerLine
	s.level++
	s.lines++
	if s.rules.Recompute(s.level, s.score) {
		s.fallInterval = s.rules.IntervalFor(s.level)
	}
}

// Rules returns the session's rules.
func (s *Session) Rules() Rules {
	return s.rules
}

// Score returns the current score.
func (s *Session) Score() int {
	return s.score
}

// Level returns the current level.
func (s *Session) Level() int {
	return s.level
}

// Lines returns the number of lines cleared since Start.
func (s *Session) Lines() int {
	return s.lines
}

// FallInterval returns the current gravity interval.
func (s *Session) FallInterval() time.Duration {
	return s.fallInterval
}

// GameOver reports whether a piece has locked above the board.
func (s *Session) GameOver() bool {
	return s.gameOver
}

// LastTick returns the timestamp of the last gravity step or command.
func (s *Session) LastTick() time.Time {
	return s.lastTick
}

// Current returns a copy of the falling piece.
func (s *Session) Current() Piece {
	return s.current
}

// Next returns a copy of the preview piece.
func (s *Session) Next() Piece {
	return s.next
}

// Rows returns the board height.
func (s *Session) Rows() int {
	return s.board.Rows()
}

// Cols returns the board width.
func (s *Session) Cols() int {
	return s.board.Cols()
}

// CellAt returns a locked board cell.
func (s *Session) CellAt(row, col int) Cell {
	return s.board.CellAt(row, col)
}

// Board returns a copy of the locked cells.
func (s *Session) Board() *Board {
	return s.board.Clone()
}
