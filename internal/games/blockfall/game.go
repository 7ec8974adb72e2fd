// Package blockfall adapts the falling-block engine to registry.Game.
// Platform ticks drive the engine's fixed-step runner.
package blockfall

import (
	"sync"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/tetris"
)

// ID is the registry identifier of the game.
const ID = "blockfall"

var (
	rulesMu sync.RWMutex
	rules   = tetris.DefaultRules()
)

// SetRules sets the rules used by games reset after this call.
// Invalid rules are rejected and the current ones kept.
func SetRules(r tetris.Rules) error {
	if err := r.Validate(); err != nil {
		return err
	}
	rulesMu.Lock()
	defer rulesMu.Unlock()
	rules = r
	return nil
}

// CurrentRules returns the rules new games start with.
func CurrentRules() tetris.Rules {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	return rules
}

// Game implements the falling-block puzzle.
type Game struct {
	runner *tetris.Runner
	layout layout

	paused bool
}

// New creates a new blockfall game. Call Reset before stepping it.
func New() *Game {
	return &Game{}
}

func init() {
	registry.Register(ID, func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return ID
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Blockfall"
}

// Reset initializes/restarts the game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	r := CurrentRules()
	g.runner = tetris.NewRunner(r, cfg.Seed, cfg.TickRate)
	g.layout = newLayout(r, cfg.ScreenW, cfg.ScreenH)
	g.paused = false
}

// Resize adapts the layout to a new screen size and keeps the session.
func (g *Game) Resize(w, h int) {
	g.layout = newLayout(g.runner.Session().Rules(), w, h)
}

// Step advances the game by one tick.
func (g *Game) Step(input core.InputFrame) core.StepResult {
	s := g.runner.Session()

	// Handle pause toggle
	if input.Has(core.ActionPause) && !s.GameOver() {
		g.paused = !g.paused
	}

	// The simulation clock stands still while nothing can be played
	if g.paused || g.layout.tooSmall || s.GameOver() {
		return core.StepResult{State: g.State()}
	}

	cmds := commandsFor(input)
	moved := g.runner.Advance(cmds...)

	return core.StepResult{
		State:   g.State(),
		Changed: moved || len(cmds) > 0,
	}
}

// commandsFor maps a frame's actions to engine commands, keeping their order.
func commandsFor(input core.InputFrame) []tetris.Command {
	var cmds []tetris.Command
	for _, a := range input.Actions {
		switch a {
		case core.ActionLeft:
			cmds = append(cmds, tetris.MoveLeft)
		case core.ActionRight:
			cmds = append(cmds, tetris.MoveRight)
		case core.ActionUp, core.ActionRotate:
			cmds = append(cmds, tetris.Rotate)
		case core.ActionDown, core.ActionDrop:
			cmds = append(cmds, tetris.SoftDrop)
		}
	}
	return cmds
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	s := g.runner.Session()
	return core.GameState{
		Score:    s.Score(),
		Level:    s.Level(),
		Lines:    s.Lines(),
		GameOver: s.GameOver(),
		Paused:   g.paused,
	}
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	var banner overlay
	switch {
	case g.runner.Session().GameOver():
		banner = overlay{"GAME OVER", "R restart  B menu"}
	case g.paused:
		banner = overlay{"PAUSED", "P to continue"}
	}
	renderSession(dst, g.layout, g.runner.Session(), g.Title(), banner)
}

// Recording returns the journal of the current session.
func (g *Game) Recording() tetris.Recording {
	return g.runner.Recording()
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() tetris.Snapshot {
	return g.runner.Snapshot()
}
