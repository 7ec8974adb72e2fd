// Package tui provides the Bubble Tea integration for blockfall.
// It handles the terminal UI loop, input mapping, and game orchestration.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockfall/internal/tetris"
)

// TickMsg is sent to trigger a game simulation tick.
// Model tags it with the owning game model so that a model left behind
// (back to menu) cannot keep a second tick chain alive.
type TickMsg struct {
	Time  time.Time
	Model uint64
}

var modelIDs atomic.Uint64

// nextModelID returns a process-unique game model ID.
func nextModelID() uint64 {
	return modelIDs.Add(1)
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int, model uint64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = tetris.DefaultTickRate
	}
	tickRate = min(tickRate, tetris.MaxTickRate)
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Model: model}
	})
}
