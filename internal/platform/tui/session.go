package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// sessionView is the screen a session is currently showing.
type sessionView int

const (
	viewMenu sessionView = iota
	viewReplays
	viewGame
)

// SessionModel manages the full session flow: menu -> game -> menu and
// menu -> replays -> playback -> replays. It is the top-level model used
// for SSH sessions, so the replay browser it opens is read-only.
type SessionModel struct {
	store     *storage.Store
	logger    *log.Logger
	config    core.RuntimeConfig
	view      sessionView
	menu      MenuModel
	replays   ReplaysModel
	gameModel *GameModel
	fromList  bool // Game view was opened from the replay browser
	status    string
	quitting  bool
}

// NewSessionModel creates a new session model.
// A nil store hides replay saving and browsing.
func NewSessionModel(store *storage.Store, logger *log.Logger, cfg core.RuntimeConfig) SessionModel {
	return SessionModel{
		store:  store,
		logger: logger,
		config: cfg,
		menu:   NewMenuModel(cfg),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.view {
	case viewGame:
		return m.updateGame(msg)
	case viewReplays:
		return m.updateReplays(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsReplays() {
		if m.store == nil {
			m.menu = NewMenuModel(m.config)
			return m, nil
		}
		return m.openReplays()
	}

	// Check if game was selected
	if selected := m.menu.Selected(); selected != nil {
		game, err := registry.Create(selected.ID)
		if err != nil {
			// Shouldn't happen since menu only shows registered games
			m.menu = NewMenuModel(m.config)
			return m, nil
		}
		m.config = m.menu.Config()
		m.config.Seed = time.Now().UnixNano()
		return m.startGame(game, false)
	}

	return m, cmd
}

// updateReplays handles updates when browsing replays.
func (m SessionModel) updateReplays(msg tea.Msg) (tea.Model, tea.Cmd) {
	newList, cmd := m.replays.Update(msg)
	if list, ok := newList.(ReplaysModel); ok {
		m.replays = list
	}

	switch {
	case m.replays.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.replays.IsGoingBack():
		return m.openMenu()

	case m.replays.Watch() != "":
		id := m.replays.Watch()
		playback, err := m.loadPlayback(id)
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("could not open replay", "id", id, "err", err)
			}
			next, _ := m.openReplays()
			next.status = "could not open replay " + shortID(id)
			return next, nil
		}
		return m.startGame(playback, true)
	}

	return m, cmd
}

// loadPlayback loads a stored replay into a playback game.
func (m SessionModel) loadPlayback(id string) (*blockfall.Playback, error) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	replay, err := m.store.LoadReplay(ctx, id)
	if err != nil {
		return nil, err
	}
	return blockfall.NewPlayback(replay.Recording())
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.gameModel.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.gameModel = &gameModel
	}

	if m.gameModel.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.gameModel.BackToMenu() {
		m.config = m.gameModel.Config()
		m.gameModel = nil
		if m.fromList {
			return m.openReplays()
		}
		return m.openMenu()
	}

	return m, cmd
}

// startGame switches the session to a game view.
func (m SessionModel) startGame(game registry.Game, fromList bool) (SessionModel, tea.Cmd) {
	gameModel := NewGameModel(game, m.store, m.logger, m.config)
	m.gameModel = &gameModel
	m.fromList = fromList
	m.status = ""
	m.view = viewGame
	return m, m.gameModel.Init()
}

// openMenu switches the session to a fresh menu.
func (m SessionModel) openMenu() (SessionModel, tea.Cmd) {
	m.menu = NewMenuModel(m.config)
	m.view = viewMenu
	m.status = ""
	return m, m.menu.Init()
}

// openReplays switches the session to a freshly loaded replay browser.
func (m SessionModel) openReplays() (SessionModel, tea.Cmd) {
	m.replays = NewReplaysModel(m.store, m.config.ScreenW, m.config.ScreenH, false)
	m.view = viewReplays
	return m, m.replays.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewGame:
		return m.gameModel.View()
	case viewReplays:
		view := m.replays.View()
		if m.status != "" {
			view += "\n" + errorStyle.Render(m.status)
		}
		return view
	default:
		return m.menu.View()
	}
}
