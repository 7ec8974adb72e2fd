package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script returns the commands to send on a given tick of a scripted run.
func script(tick uint64) []Command {
	switch {
	case tick%97 == 0:
		return []Command{Rotate}
	case tick%41 == 0:
		return []Command{MoveLeft, MoveLeft}
	case tick%53 == 0:
		return []Command{MoveRight}
	case tick%7 == 0:
		return []Command{SoftDrop}
	}
	return nil
}

func runScripted(r *Runner, ticks int) {
	for range ticks {
		r.Advance(script(r.Tick() + 1)...)
	}
}

func TestRunnerGravityTiming(t *testing.T) {
	r := NewRunner(DefaultRules(), 1, 60)
	row := r.Session().Current().Row()

	// 60 ticks at 60 Hz is just under one second: no step yet.
	for i := range 60 {
		require.False(t, r.Advance(), "tick %d", i+1)
	}
	assert.True(t, r.Advance())
	assert.Equal(t, row+1, r.Session().Current().Row())
	assert.Equal(t, uint64(61), r.Tick())
}

func TestRunnerDefaultsTickRate(t *testing.T) {
	r := NewRunner(DefaultRules(), 1, 0)

	assert.Equal(t, DefaultTickRate, r.TickRate())
	r.Advance()
	assert.Equal(t, time.Unix(0, 0).UTC().Add(time.Second/60), r.Now())
}

func TestRunnerClampsTickRate(t *testing.T) {
	r := NewRunner(DefaultRules(), 1, 2_000_000_000)

	assert.Equal(t, MaxTickRate, r.TickRate())
	r.Advance()
	assert.Equal(t, time.Unix(0, 0).UTC().Add(time.Second/MaxTickRate), r.Now(), "the clock must move every tick")
}

func TestRunnerDeterminism(t *testing.T) {
	r1 := NewRunner(DefaultRules(), 12345, 60)
	r2 := NewRunner(DefaultRules(), 12345, 60)

	runScripted(r1, 5000)
	runScripted(r2, 5000)

	assert.Equal(t, r1.Snapshot(), r2.Snapshot())
}

func TestRunnerJournalsCommands(t *testing.T) {
	r := NewRunner(DefaultRules(), 7, 60)
	r.Advance()
	r.Advance(MoveLeft, Rotate)
	r.Advance(SoftDrop)

	rec := r.Recording()
	assert.Equal(t, int64(7), rec.Seed)
	assert.Equal(t, 60, rec.TickRate)
	assert.Equal(t, uint64(3), rec.Ticks)
	assert.Equal(t, DefaultRules(), rec.Rules)
	assert.Equal(t, []Event{
		{Tick: 2, Command: MoveLeft},
		{Tick: 2, Command: Rotate},
		{Tick: 3, Command: SoftDrop},
	}, rec.Events)

	// The returned journal is a copy.
	rec.Events[0].Command = SoftDrop
	assert.Equal(t, MoveLeft, r.Recording().Events[0].Command)
}

func TestReplayReproducesRun(t *testing.T) {
	r := NewRunner(DefaultRules(), 99, 60)
	runScripted(r, 8000)

	replayed, err := Replay(r.Recording())
	require.NoError(t, err)

	assert.Equal(t, r.Snapshot(), replayed.Snapshot())
	assert.Equal(t, r.Recording(), replayed.Recording())
}

func TestReplayStopsJournalAfterGameOver(t *testing.T) {
	r := NewRunner(DefaultRules(), 5, 60)
	for i := 0; i < 100000 && !r.Session().GameOver(); i++ {
		r.Advance(SoftDrop)
	}
	require.True(t, r.Session().GameOver(), "dropping every tick must eventually top out")

	journaled := len(r.Recording().Events)
	r.Advance(SoftDrop, MoveLeft)
	assert.Len(t, r.Recording().Events, journaled)

	replayed, err := Replay(r.Recording())
	require.NoError(t, err)
	assert.True(t, replayed.Session().GameOver())
	assert.Equal(t, r.Snapshot(), replayed.Snapshot())
}

func TestReplayRejectsInvalidRecordings(t *testing.T) {
	valid := NewRunner(DefaultRules(), 1, 60).Recording()

	tests := []struct {
		name   string
		mutate func(*Recording)
	}{
		{"zero tick rate", func(r *Recording) { r.TickRate = 0 }},
		{"tick rate too high", func(r *Recording) { r.TickRate = 2_000_000_000 }},
		{"narrow board", func(r *Recording) { r.Rules.Cols = 5 }},
		{"zero interval", func(r *Recording) { r.Rules.BaseInterval = 0 }},
		{"event on tick zero", func(r *Recording) {
			r.Ticks = 3
			r.Events = []Event{
				{Tick: 0, Command: MoveLeft},
				{Tick: 2, Command: MoveRight},
				{Tick: 3, Command: MoveRight},
			}
		}},
		{"event after end", func(r *Recording) {
			r.Ticks = 2
			r.Events = []Event{{Tick: 3, Command: SoftDrop}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)

			_, err := Replay(rec)
			assert.ErrorIs(t, err, ErrInvalidRecording)
		})
	}
}

func TestCommandText(t *testing.T) {
	for c := MoveLeft; c <= SoftDrop; c++ {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var back Command
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}

	var c Command
	assert.Error(t, c.UnmarshalText([]byte("hard_drop")))
	_, err := Command(42).MarshalText()
	assert.Error(t, err)
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	bad := DefaultRules()
	bad.Rows = 2
	bad.SpeedupEvery = 0
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows")
	assert.Contains(t, err.Error(), "speedup_every")
}

func TestRulesIntervalFor(t *testing.T) {
	r := DefaultRules()

	assert.Equal(t, time.Second, r.IntervalFor(0))
	assert.Equal(t, 850*time.Millisecond, r.IntervalFor(2))
	assert.Equal(t, 100*time.Millisecond, r.IntervalFor(12))
	assert.Equal(t, time.Duration(0), r.IntervalFor(20), "never negative")

	r.MinInterval = 50 * time.Millisecond
	assert.Equal(t, 50*time.Millisecond, r.IntervalFor(14))
}

func TestPlayerStepsTickByTick(t *testing.T) {
	r := NewRunner(DefaultRules(), 3, 60)
	runScripted(r, 300)
	rec := r.Recording()

	p, err := NewPlayer(rec)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), p.Ticks())

	steps := 0
	for p.Step() {
		steps++
		assert.Equal(t, uint64(steps), p.Runner().Tick())
	}
	assert.Equal(t, 300, steps)
	assert.True(t, p.Done())
	assert.False(t, p.Step(), "exhausted player must not advance")
	assert.Equal(t, r.Snapshot(), p.Runner().Snapshot())
}
