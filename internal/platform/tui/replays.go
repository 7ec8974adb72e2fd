package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/storage"
)

// maxReplays is the number of replays loaded into the browser.
const maxReplays = 100

// ReplaysKeyMap defines the key bindings for the replay browser.
type ReplaysKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Watch  key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
// Disabled bindings are hidden by the help model.
func (k ReplaysKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Watch, k.Delete, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ReplaysKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Watch},
		{k.Delete, k.Back, k.Quit},
	}
}

// DefaultReplaysKeyMap returns default key bindings.
func DefaultReplaysKeyMap() ReplaysKeyMap {
	return ReplaysKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Watch: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "watch"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ReplaysModel is the Bubble Tea model for browsing stored replays.
type ReplaysModel struct {
	store     *storage.Store
	replays   []storage.ReplaySummary
	table     table.Model
	help      help.Model
	keys      ReplaysKeyMap
	width     int
	height    int
	err       error
	watch     string // ID of the replay picked for playback
	quitting  bool
	goingBack bool
}

// NewReplaysModel creates a replay browser over the given store.
// Deleting is only offered when allowDelete is set; shared stores served
// to remote sessions are browsed read-only.
func NewReplaysModel(store *storage.Store, width, height int, allowDelete bool) ReplaysModel {
	h := help.New()
	h.Width = width

	keys := DefaultReplaysKeyMap()
	keys.Delete.SetEnabled(allowDelete)

	m := ReplaysModel{
		store:  store,
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.loadReplays()
	return m
}

// createTable creates a new table sized for the current window.
func (m *ReplaysModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Score", Width: 8},
		{Title: "Level", Width: 6},
		{Title: "Lines", Width: 6},
		{Title: "Time", Width: 8},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadReplays reloads the replay list from the store.
func (m *ReplaysModel) loadReplays() {
	m.replays = nil
	m.err = nil
	if m.store != nil {
		m.replays, m.err = m.store.ListReplays(context.Background(), maxReplays)
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current replays.
func (m *ReplaysModel) updateTableRows() {
	rows := make([]table.Row, len(m.replays))
	for i, r := range m.replays {
		rows[i] = table.Row{
			shortID(r.ID),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.Level),
			fmt.Sprintf("%d", r.Lines),
			formatDuration(r),
			r.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
}

// formatDuration renders the game time of a replay as m:ss.
func formatDuration(r storage.ReplaySummary) string {
	secs := int(r.Duration().Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Init initializes the replay browser.
func (m ReplaysModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the replay browser.
func (m ReplaysModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Watch):
			if r, ok := m.current(); ok {
				m.watch = r.ID
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if r, ok := m.current(); ok && m.store != nil {
				if err := m.store.DeleteReplay(context.Background(), r.ID); err != nil {
					m.err = err
					return m, nil
				}
				cursor := m.table.Cursor()
				m.loadReplays()
				m.table.SetCursor(min(cursor, max(0, len(m.replays)-1)))
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table for scrolling
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// current returns the replay under the cursor.
func (m ReplaysModel) current() (storage.ReplaySummary, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.replays) {
		return storage.ReplaySummary{}, false
	}
	return m.replays[i], true
}

// View renders the replay browser.
func (m ReplaysModel) View() string {
	if m.quitting || m.goingBack || m.watch != "" {
		return ""
	}

	var b strings.Builder

	b.WriteString(centerText(titleStyle.Render("REPLAYS"), m.width))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var content string
	switch {
	case m.err != nil:
		content = errorStyle.Render("Could not load replays: " + m.err.Error())
	case len(m.replays) == 0:
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No replays recorded yet.\nFinish a game to save one!")
	default:
		content = m.table.View()
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(content)))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// Watch returns the ID of the replay picked for playback, if any.
func (m ReplaysModel) Watch() string {
	return m.watch
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ReplaysModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ReplaysModel) IsQuitting() bool {
	return m.quitting
}

// ReplaysResult holds the outcome of the replay browser.
type ReplaysResult struct {
	Watch string // Replay ID to play back, empty if none
	Back  bool
}

// RunReplayBrowser runs the replay browser screen.
func RunReplayBrowser(store *storage.Store, width, height int) (ReplaysResult, error) {
	p := tea.NewProgram(
		NewReplaysModel(store, width, height, true),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return ReplaysResult{}, err
	}

	m, ok := finalModel.(ReplaysModel)
	if !ok {
		return ReplaysResult{}, nil
	}
	return ReplaysResult{Watch: m.Watch(), Back: m.IsGoingBack()}, nil
}
