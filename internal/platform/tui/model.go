package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// helpLines is the number of terminal rows reserved under the game screen.
const helpLines = 1

// saveTimeout bounds a replay save.
const saveTimeout = 5 * time.Second

// replaySavedMsg reports the result of a background replay save.
type replaySavedMsg struct {
	model uint64
	id    string
	err   error
}

// GameModel is the Bubble Tea model for running one game.
type GameModel struct {
	id         uint64
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keys       GameKeyMap
	help       help.Model
	status     string
	statusErr  bool
	saved      []string
	replaySave bool // Whether the replay has been saved for current game over
	quitting   bool
	backToMenu bool
	standalone bool // Back quits the program instead of returning to a menu
}

// NewGameModel creates a new Bubble Tea model for the given game.
// A nil store disables replay saving; a nil logger disables logging.
func NewGameModel(game registry.Game, store *storage.Store, logger *log.Logger, cfg core.RuntimeConfig) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	h := help.New()
	h.Width = cfg.ScreenW

	return GameModel{
		id:         nextModelID(),
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, gameHeight(cfg.ScreenH)),
		store:      store,
		logger:     logger,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keys:       DefaultGameKeyMap(),
		help:       h,
	}
}

// gameHeight is the screen height left to the game.
func gameHeight(termH int) int {
	return max(1, termH-helpLines)
}

// gameConfig is the runtime config the game itself sees.
func (m GameModel) gameConfig() core.RuntimeConfig {
	cfg := m.config
	cfg.ScreenH = gameHeight(cfg.ScreenH)
	return cfg
}

// Init initializes the model and starts the game.
func (m GameModel) Init() tea.Cmd {
	// Initialize the game
	m.game.Reset(m.gameConfig())

	// Start the tick loop
	return tickCmd(m.config.TickRate, m.id)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.Model != m.id {
			return m, nil
		}
		return m.handleTick()

	case replaySavedMsg:
		if msg.model == m.id {
			m.handleSaved(msg)
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action := m.keys.MapKey(msg); action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionBack:
		// Back only when the game is not running
		if m.gameState.GameOver || m.gameState.Paused {
			m.backToMenu = true
			if m.standalone {
				return m, tea.Quit
			}
		}
		return m, nil

	case core.ActionNone:
		if key.Matches(msg, m.keys.Screenshot) {
			m.saveScreenshot()
		}
		return m, nil

	default:
		m.inputFrame.Set(action)
		return m, nil
	}
}

// handleResize processes window resize events.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, gameHeight(msg.Height))
	m.help.Width = msg.Width

	cfg := m.gameConfig()
	if r, ok := m.game.(registry.Resizer); ok {
		r.Resize(cfg.ScreenW, cfg.ScreenH)
	} else if !m.gameState.GameOver {
		m.game.Reset(cfg)
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	next := tickCmd(m.config.TickRate, m.id)

	// Check for restart
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		// Reset seed for new game
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.gameConfig())
		m.gameState = m.game.State()
		m.replaySave = false
		m.status = ""
		m.inputFrame.Clear()
		return m, next
	}

	// Run game simulation
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	// Clear input for next frame
	m.inputFrame.Clear()

	// Save the replay on game over (once)
	if m.gameState.GameOver && !m.replaySave {
		m.replaySave = true
		if cmd := m.saveReplayCmd(); cmd != nil {
			return m, tea.Batch(next, cmd)
		}
	}

	// Continue ticking
	return m, next
}

// saveReplayCmd stores the finished game in the background.
// Returns nil when there is nothing to save.
func (m GameModel) saveReplayCmd() tea.Cmd {
	rec, ok := m.game.(registry.Recorder)
	if !ok || m.store == nil {
		return nil
	}
	recording := rec.Recording()
	store, gameID, id := m.store, m.game.ID(), m.id

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		replayID, err := store.SaveReplay(ctx, gameID, recording)
		return replaySavedMsg{model: id, id: replayID, err: err}
	}
}

// handleSaved records the outcome of a replay save.
func (m *GameModel) handleSaved(msg replaySavedMsg) {
	if msg.err != nil {
		m.status = "replay not saved: " + msg.err.Error()
		m.statusErr = true
		if m.logger != nil {
			m.logger.Warn("could not save replay", "game", m.game.ID(), "err", msg.err)
		}
		return
	}
	m.saved = append(m.saved, msg.id)
	m.status = "replay saved " + shortID(msg.id)
	m.statusErr = false
	if m.logger != nil {
		m.logger.Info("replay saved", "game", m.game.ID(), "id", msg.id, "score", m.gameState.Score)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	// Render current state
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".blockfall", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	// Generate filename with timestamp
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
	m.status = "screenshot saved"
	m.statusErr = false
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	// Render game to screen buffer
	m.game.Render(m.screen)

	footer := helpStyle.Render(m.help.View(m.keys))
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		footer = style.Render(m.status)
	}
	return RenderScreen(m.screen) + "\n" + footer
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// SavedReplays returns the IDs of replays saved by this model.
func (m GameModel) SavedReplays() []string {
	return m.saved
}

// Config returns the current runtime config (may have been updated by resize).
func (m GameModel) Config() core.RuntimeConfig {
	return m.config
}

// shortID returns the first block of a replay UUID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Result is the outcome of a standalone game run.
type Result struct {
	SavedReplays []string
	Config       core.RuntimeConfig
	Quit         bool // User pressed quit rather than back
}

// Run starts a Bubble Tea program for one game and blocks until it exits.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig) (Result, error) {
	model := NewGameModel(game, store, nil, cfg)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	finalModel, err := p.Run()
	if err != nil {
		return Result{Config: cfg}, err
	}

	m, ok := finalModel.(GameModel)
	if !ok {
		return Result{Config: cfg, Quit: true}, nil
	}
	return Result{
		SavedReplays: m.SavedReplays(),
		Config:       m.Config(),
		Quit:         m.IsQuitting(),
	}, nil
}
