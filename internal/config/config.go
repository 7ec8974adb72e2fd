// Package config provides YAML-based configuration loading for the
// blockfall rules: board size, gravity curve and scoring.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/blockfall/internal/tetris"
)

// Config contains all tunable blockfall settings.
type Config struct {
	Board   BoardConfig   `yaml:"board"`
	Gravity GravityConfig `yaml:"gravity"`
	Scoring ScoringConfig `yaml:"scoring"`
}

// BoardConfig defines the well dimensions.
type BoardConfig struct {
	Rows        int `yaml:"rows"`
	Cols        int `yaml:"cols"`
	SpawnColumn int `yaml:"spawn_column"`
}

// GravityConfig defines the fall-speed curve.
// The interval at level L is base_interval_ms - step_ms*L, floored at
// min_interval_ms, and only refreshed on every speedup_every-th line while
// the score is at most score_cap.
type GravityConfig struct {
	BaseIntervalMS int `yaml:"base_interval_ms"`
	StepMS         int `yaml:"step_ms"`
	MinIntervalMS  int `yaml:"min_interval_ms"`
	SpeedupEvery   int `yaml:"speedup_every"`
	ScoreCap       int `yaml:"score_cap"`
}

// ScoringConfig defines points awarded per cleared line.
type ScoringConfig struct {
	PointsPerLine int `yaml:"points_per_line"`
}

// Rules converts the configuration into engine rules.
func (c Config) Rules() tetris.Rules {
	return tetris.Rules{
		Rows:          c.Board.Rows,
		Cols:          c.Board.Cols,
		SpawnColumn:   c.Board.SpawnColumn,
		BaseInterval:  time.Duration(c.Gravity.BaseIntervalMS) * time.Millisecond,
		IntervalStep:  time.Duration(c.Gravity.StepMS) * time.Millisecond,
		MinInterval:   time.Duration(c.Gravity.MinIntervalMS) * time.Millisecond,
		SpeedupEvery:  c.Gravity.SpeedupEvery,
		ScoreCap:      c.Gravity.ScoreCap,
		PointsPerLine: c.Scoring.PointsPerLine,
	}
}

// FromRules builds a configuration from engine rules.
func FromRules(r tetris.Rules) Config {
	return Config{
		Board: BoardConfig{
			Rows:        r.Rows,
			Cols:        r.Cols,
			SpawnColumn: r.SpawnColumn,
		},
		Gravity: GravityConfig{
			BaseIntervalMS: int(r.BaseInterval / time.Millisecond),
			StepMS:         int(r.IntervalStep / time.Millisecond),
			MinIntervalMS:  int(r.MinInterval / time.Millisecond),
			SpeedupEvery:   r.SpeedupEvery,
			ScoreCap:       r.ScoreCap,
		},
		Scoring: ScoringConfig{
			PointsPerLine: r.PointsPerLine,
		},
	}
}

// Validate reports every inconsistent setting.
func (c Config) Validate() error {
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}
