package blockfall

import (
	"fmt"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/tetris"
)

// Playback replays a stored recording, one recorded tick per Step.
// It satisfies registry.Game so the platform can run it like any game.
type Playback struct {
	rec    tetris.Recording
	player *tetris.Player
	layout layout
	paused bool
}

// NewPlayback validates a recording and prepares a viewer for it.
func NewPlayback(rec tetris.Recording) (*Playback, error) {
	// Validate up front so Reset cannot fail later.
	if _, err := tetris.NewPlayer(rec); err != nil {
		return nil, err
	}
	return &Playback{rec: rec}, nil
}

// ID returns the game identifier.
func (p *Playback) ID() string {
	return ID + "_replay"
}

// Title returns the display name.
func (p *Playback) Title() string {
	return "Blockfall Replay"
}

// Reset rewinds the playback. The seed is ignored: the recording carries its own.
func (p *Playback) Reset(cfg core.RuntimeConfig) {
	p.player, _ = tetris.NewPlayer(p.rec) // validated in NewPlayback
	p.layout = newLayout(p.rec.Rules, cfg.ScreenW, cfg.ScreenH)
	p.paused = false
}

// Resize adapts the layout without rewinding.
func (p *Playback) Resize(w, h int) {
	p.layout = newLayout(p.rec.Rules, w, h)
}

// Step plays the next recorded tick.
func (p *Playback) Step(input core.InputFrame) core.StepResult {
	if input.Has(core.ActionPause) {
		p.paused = !p.paused
	}
	if p.paused || p.layout.tooSmall {
		return core.StepResult{State: p.State()}
	}

	changed := p.player.Step()
	return core.StepResult{State: p.State(), Changed: changed}
}

// State reports the replayed session. A finished playback counts as game
// over so the platform offers a restart.
func (p *Playback) State() core.GameState {
	s := p.player.Runner().Session()
	return core.GameState{
		Score:    s.Score(),
		Level:    s.Level(),
		Lines:    s.Lines(),
		GameOver: p.player.Done(),
		Paused:   p.paused,
	}
}

// Render draws the replayed session with a progress line.
func (p *Playback) Render(dst *core.Screen) {
	var banner overlay
	switch {
	case p.player.Done():
		banner = overlay{"END OF REPLAY", "R replay  B back"}
	case p.paused:
		banner = overlay{"PAUSED", "P to continue"}
	}
	runner := p.player.Runner()
	renderSession(dst, p.layout, runner.Session(), p.Title(), banner)

	if !p.layout.tooSmall {
		progress := fmt.Sprintf("tick %d/%d", runner.Tick(), p.player.Ticks())
		dst.DrawTextColored(p.layout.panelX, p.layout.wellY+p.layout.wellH-1, progress, core.ColorGray)
	}
}

// Snapshot returns the replayed session snapshot.
func (p *Playback) Snapshot() tetris.Snapshot {
	return p.player.Runner().Snapshot()
}
