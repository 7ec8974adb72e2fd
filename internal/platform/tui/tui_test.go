package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
	"github.com/vovakirdan/blockfall/internal/tetris"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 60, Seed: 42}
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "replays.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func saveReplay(t *testing.T, store *storage.Store) string {
	t.Helper()
	r := tetris.NewRunner(tetris.DefaultRules(), 7, 60)
	for range 120 {
		r.Advance(tetris.SoftDrop)
	}
	id, err := store.SaveReplay(context.Background(), blockfall.ID, r.Recording())
	if err != nil {
		t.Fatalf("SaveReplay: %v", err)
	}
	return id
}

func TestGameKeyMap(t *testing.T) {
	keys := DefaultGameKeyMap()

	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{runes("h"), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{runes("l"), core.ActionRight},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionRotate},
		{runes("x"), core.ActionRotate},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionDrop},
		{runes("j"), core.ActionDrop},
		{runes("p"), core.ActionPause},
		{runes("r"), core.ActionRestart},
		{runes("b"), core.ActionBack},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack},
		{runes("q"), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, core.ActionNone},
		{runes("z"), core.ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			if got := keys.MapKey(tt.msg); got != tt.want {
				t.Errorf("MapKey(%q) = %v, want %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(12, 2)
	s.DrawText(0, 0, "score")
	s.SetColored(6, 0, '█', core.ColorTeal)
	s.DrawTextColored(0, 1, "next", core.ColorGray)

	// Styles degrade to plain text without a terminal.
	if got, want := RenderScreen(s), s.String(); got != want {
		t.Errorf("RenderScreen = %q, want %q", got, want)
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q", got)
	}
	if got := centerText("too wide", 4); got != "too wide" {
		t.Errorf("centerText should not truncate, got %q", got)
	}
}

func TestGameModelIgnoresForeignTicks(t *testing.T) {
	game, err := registry.Create(blockfall.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	m := NewGameModel(game, nil, nil, testConfig())
	m.Init()
	bf := game.(*blockfall.Game)

	next, _ := m.Update(TickMsg{Model: m.id + 1000})
	m = next.(GameModel)
	if tick := bf.Snapshot().Tick; tick != 0 {
		t.Fatalf("foreign tick advanced the game to %d", tick)
	}

	next, cmd := m.Update(TickMsg{Model: m.id})
	m = next.(GameModel)
	if tick := bf.Snapshot().Tick; tick != 1 {
		t.Errorf("tick = %d, want 1", tick)
	}
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestGameModelKeysReachGame(t *testing.T) {
	game, _ := registry.Create(blockfall.ID)
	m := NewGameModel(game, nil, nil, testConfig())
	m.Init()
	bf := game.(*blockfall.Game)
	col := bf.Snapshot().Current.Col

	next, _ := m.Update(runes("h"))
	next, _ = next.(GameModel).Update(TickMsg{Model: m.id})
	if got := bf.Snapshot().Current.Col; got != col-1 {
		t.Errorf("column = %d, want %d", got, col-1)
	}
}

func TestGameModelBackOnlyWhenStopped(t *testing.T) {
	game, _ := registry.Create(blockfall.ID)
	m := NewGameModel(game, nil, nil, testConfig())
	m.Init()

	next, _ := m.Update(runes("b"))
	m = next.(GameModel)
	if m.BackToMenu() {
		t.Fatal("back must be ignored while playing")
	}

	next, _ = m.Update(runes("p"))
	next, _ = next.(GameModel).Update(TickMsg{Model: m.id})
	next, _ = next.(GameModel).Update(runes("b"))
	m = next.(GameModel)
	if !m.BackToMenu() {
		t.Error("back should work while paused")
	}
}

func TestGameModelSavesReplayOnGameOver(t *testing.T) {
	store := openStore(t)
	game, _ := registry.Create(blockfall.ID)
	m := NewGameModel(game, store, nil, testConfig())
	m.Init()

	for i := 0; i < 100000 && !m.gameState.GameOver; i++ {
		next, _ := m.Update(runes("j"))
		next, _ = next.(GameModel).Update(TickMsg{Model: m.id})
		m = next.(GameModel)
	}
	if !m.gameState.GameOver {
		t.Fatal("dropping every tick should end the game")
	}
	if !m.replaySave {
		t.Fatal("game over should trigger a replay save")
	}

	msg := m.saveReplayCmd()()
	next, _ := m.Update(msg)
	m = next.(GameModel)

	saved := m.SavedReplays()
	if len(saved) != 1 {
		t.Fatalf("saved %d replays, want 1", len(saved))
	}
	if !strings.Contains(m.View(), shortID(saved[0])) {
		t.Error("status line should name the saved replay")
	}

	replay, err := store.LoadReplay(context.Background(), saved[0])
	if err != nil {
		t.Fatalf("LoadReplay: %v", err)
	}
	if replay.Score != m.gameState.Score || !replay.GameOver {
		t.Errorf("stored summary %+v does not match final state %+v", replay.ReplaySummary, m.gameState)
	}
}

func TestMenuModel(t *testing.T) {
	m := NewMenuModel(testConfig())
	if !strings.Contains(m.View(), "Blockfall") {
		t.Errorf("menu should list blockfall:\n%s", m.View())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(MenuModel)
	if cmd == nil {
		t.Error("selecting should quit the menu program")
	}
	if got := m.result(); got.GameID != blockfall.ID || got.Quit {
		t.Errorf("result = %+v", got)
	}

	next, _ = NewMenuModel(testConfig()).Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := next.(MenuModel).result(); !got.WantsReplays {
		t.Errorf("tab should open replays, got %+v", got)
	}

	next, _ = NewMenuModel(testConfig()).Update(runes("q"))
	if got := next.(MenuModel).result(); !got.Quit {
		t.Errorf("q should quit, got %+v", got)
	}
}

func TestReplaysModel(t *testing.T) {
	store := openStore(t)
	id := saveReplay(t, store)

	m := NewReplaysModel(store, 100, 30, true)
	if !strings.Contains(m.View(), shortID(id)) {
		t.Errorf("browser should list %s:\n%s", shortID(id), m.View())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(ReplaysModel).Watch(); got != id {
		t.Errorf("Watch = %q, want %q", got, id)
	}

	next, _ = m.Update(runes("d"))
	if n := len(next.(ReplaysModel).replays); n != 0 {
		t.Errorf("%d replays left after delete", n)
	}
	if _, err := store.LoadReplay(context.Background(), id); err == nil {
		t.Error("deleted replay should be gone from the store")
	}
}

func TestReplaysModelReadOnly(t *testing.T) {
	store := openStore(t)
	id := saveReplay(t, store)

	m := NewReplaysModel(store, 100, 30, false)
	if strings.Contains(m.View(), "delete") {
		t.Errorf("read-only help should not offer delete:\n%s", m.View())
	}

	next, _ := m.Update(runes("d"))
	if n := len(next.(ReplaysModel).replays); n != 1 {
		t.Errorf("%d replays listed after d, want 1", n)
	}
	if _, err := store.LoadReplay(context.Background(), id); err != nil {
		t.Errorf("replay should survive a read-only browser: %v", err)
	}
}

func TestReplaysModelEmpty(t *testing.T) {
	m := NewReplaysModel(openStore(t), 100, 30, true)
	if !strings.Contains(m.View(), "No replays") {
		t.Errorf("empty browser view:\n%s", m.View())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next.(ReplaysModel).Watch() != "" {
		t.Error("nothing to watch in an empty list")
	}
}

func TestSessionFlow(t *testing.T) {
	store := openStore(t)
	id := saveReplay(t, store)
	m := NewSessionModel(store, nil, testConfig())

	update := func(msg tea.Msg) {
		t.Helper()
		next, _ := m.Update(msg)
		m = next.(SessionModel)
	}

	// menu -> game -> pause -> back to menu
	update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != viewGame || m.gameModel == nil {
		t.Fatal("enter should start a game")
	}
	update(runes("p"))
	update(TickMsg{Model: m.gameModel.id})
	update(runes("b"))
	if m.view != viewMenu {
		t.Fatalf("view = %d, want menu", m.view)
	}

	// menu -> replays -> playback -> replays
	update(tea.KeyMsg{Type: tea.KeyTab})
	if m.view != viewReplays {
		t.Fatalf("view = %d, want replays", m.view)
	}
	update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != viewGame {
		t.Fatalf("view = %d, want playback", m.view)
	}
	if got := m.gameModel.game.ID(); got != blockfall.ID+"_replay" {
		t.Errorf("playing %q, want playback of %s", got, id)
	}
	update(runes("p"))
	update(TickMsg{Model: m.gameModel.id})
	update(runes("b"))
	if m.view != viewReplays {
		t.Errorf("back from playback should return to replays, view = %d", m.view)
	}

	// Remote sessions share the store and must not delete from it.
	update(runes("d"))
	if _, err := store.LoadReplay(context.Background(), id); err != nil {
		t.Errorf("session deleted a shared replay: %v", err)
	}

	update(runes("q"))
	if !m.quitting {
		t.Error("q should quit the session")
	}
}
