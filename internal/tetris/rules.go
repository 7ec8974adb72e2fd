package tetris

import (
	"errors"
	"fmt"
	"time"
)

// Rules holds the tunable constants of a session: board geometry, the
// fall-speed curve and line scoring.
type Rules struct {
	Rows        int `json:"rows" yaml:"rows"`
	Cols        int `json:"cols" yaml:"cols"`
	SpawnColumn int `json:"spawn_column" yaml:"spawn_column"`

	// BaseInterval is the fall interval at level 0.
	BaseInterval time.Duration `json:"base_interval" yaml:"base_interval"`
	// IntervalStep is subtracted once per level when the interval is recomputed.
	IntervalStep time.Duration `json:"interval_step" yaml:"interval_step"`
	// MinInterval floors the recomputed interval.
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
	// SpeedupEvery gates recomputation to levels divisible by this value.
	SpeedupEvery int `json:"speedup_every" yaml:"speedup_every"`
	// ScoreCap stops recomputation once the score exceeds it.
	ScoreCap int `json:"score_cap" yaml:"score_cap"`

	PointsPerLine int `json:"points_per_line" yaml:"points_per_line"`
}

// DefaultRules returns the reference rules: 20x10 board, spawn at column 3,
// 1000 ms base interval, -75 ms per level on even levels while score <= 200,
// 10 points per line.
func DefaultRules() Rules {
	return Rules{
		Rows:          DefaultRows,
		Cols:          DefaultCols,
		SpawnColumn:   SpawnColumn,
		BaseInterval:  1000 * time.Millisecond,
		IntervalStep:  75 * time.Millisecond,
		MinInterval:   0,
		SpeedupEvery:  2,
		ScoreCap:      200,
		PointsPerLine: 10,
	}
}

// Validate checks that the rules describe a playable session.
func (r Rules) Validate() error {
	var errs []error
	if r.Rows < 4 {
		errs = append(errs, fmt.Errorf("rows must be at least 4, got %d", r.Rows))
	}
	if r.SpawnColumn < 0 {
		errs = append(errs, fmt.Errorf("spawn column must not be negative, got %d", r.SpawnColumn))
	}
	// The widest shape (I, 4x4) must fit at the spawn column.
	if r.Cols < r.SpawnColumn+4 {
		errs = append(errs, fmt.Errorf("cols must be at least spawn column + 4 (%d), got %d", r.SpawnColumn+4, r.Cols))
	}
	if r.BaseInterval <= 0 {
		errs = append(errs, fmt.Errorf("base interval must be positive, got %s", r.BaseInterval))
	}
	if r.IntervalStep < 0 {
		errs = append(errs, fmt.Errorf("interval step must not be negative, got %s", r.IntervalStep))
	}
	if r.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("min interval must not be negative, got %s", r.MinInterval))
	}
	if r.SpeedupEvery < 1 {
		errs = append(errs, fmt.Errorf("speedup_every must be at least 1, got %d", r.SpeedupEvery))
	}
	if r.PointsPerLine < 0 {
		errs = append(errs, fmt.Errorf("points per line must not be negative, got %d", r.PointsPerLine))
	}
	return errors.Join(errs...)
}

// Recompute reports whether the fall interval is recomputed for this
// level/score pair.
func (r Rules) Recompute(level, score int) bool {
	return level%r.SpeedupEvery == 0 && score <= r.ScoreCap
}

// IntervalFor returns BaseInterval - IntervalStep*level, floored at
// MinInterval.
func (r Rules) IntervalFor(level int) time.Duration {
	d := r.BaseInterval - time.Duration(level)*r.IntervalStep
	if d < r.MinInterval {
		d = r.MinInterval
	}
	return d
}
