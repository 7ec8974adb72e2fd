package tetris

// StateType is the coarse session state.
type StateType string

const (
	StatePlaying  StateType = "playing"
	StateGameOver StateType = "game_over"
)

// PieceSnapshot describes a piece for display and comparison.
type PieceSnapshot struct {
	Shape    string `json:"shape"`
	Rotation int    `json:"rotation"`
	Col      int    `json:"col"`
	Row      int    `json:"row"`
	Color    Cell   `json:"color"`
}

// Snapshot captures the complete session state for determinism testing and
// replay inspection.
type Snapshot struct {
	Tick           uint64        `json:"tick"`
	Score          int           `json:"score"`
	Level          int           `json:"level"`
	Lines          int           `json:"lines"`
	FallIntervalMS int64         `json:"fall_interval_ms"`
	State          StateType     `json:"state"`
	Board          []string      `json:"board"`
	Current        PieceSnapshot `json:"current"`
	Next           PieceSnapshot `json:"next"`
}

func snapshotPiece(p Piece) PieceSnapshot {
	return PieceSnapshot{
		Shape:    p.Shape().Name(),
		Rotation: p.Rotation(),
		Col:      p.Col(),
		Row:      p.Row(),
		Color:    p.Color(),
	}
}

// Snapshot returns the session state. Tick is left zero; Runner.Snapshot
// fills it in.
func (s *Session) Snapshot() Snapshot {
	state := StatePlaying
	if s.gameOver {
		state = StateGameOver
	}
	return Snapshot{
		Score:          s.score,
		Level:          s.level,
		Lines:          s.lines,
		FallIntervalMS: s.fallInterval.Milliseconds(),
		State:          state,
		Board:          s.board.RowStrings(),
		Current:        snapshotPiece(s.current),
		Next:           snapshotPiece(s.next),
	}
}

// Snapshot returns the session snapshot stamped with the runner tick.
func (r *Runner) Snapshot() Snapshot {
	snap := r.session.Snapshot()
	snap.Tick = r.tick
	return snap
}
