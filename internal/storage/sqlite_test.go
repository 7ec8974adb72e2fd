package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/blockfall/internal/tetris"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// sampleRecording plays a short scripted game.
func sampleRecording(seed int64, ticks int) tetris.Recording {
	r := tetris.NewRunner(tetris.DefaultRules(), seed, 60)
	for i := 1; i <= ticks; i++ {
		switch {
		case i%40 == 0:
			r.Advance(tetris.Rotate, tetris.MoveLeft)
		case i%6 == 0:
			r.Advance(tetris.SoftDrop)
		default:
			r.Advance()
		}
	}
	return r.Recording()
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}

	// Reopening runs migrations again without error
	store.Close()
	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	store.Close()
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/.blockfall/replays.db")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".blockfall", "replays.db"); got != want {
		t.Errorf("ExpandPath() = %q, expected %q", got, want)
	}

	if got, _ := ExpandPath("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed to %q", got)
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecording(42, 2000)
	id, err := store.SaveReplay(ctx, "blockfall", rec)
	if err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected a UUID, got %q", id)
	}

	replay, err := store.LoadReplay(ctx, id)
	if err != nil {
		t.Fatalf("LoadReplay() failed: %v", err)
	}

	if replay.GameID != "blockfall" || replay.Seed != 42 || replay.TickRate != 60 || replay.Ticks != 2000 {
		t.Errorf("unexpected summary: %+v", replay.ReplaySummary)
	}
	if !reflect.DeepEqual(replay.Recording(), rec) {
		t.Error("loaded recording differs from the saved one")
	}
	if replay.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	// The stored summary matches a fresh simulation
	final, err := tetris.Replay(rec)
	if err != nil {
		t.Fatal(err)
	}
	if replay.Score != final.Session().Score() || replay.Lines != final.Session().Lines() {
		t.Errorf("stored score %d/%d, simulated %d/%d",
			replay.Score, replay.Lines, final.Session().Score(), final.Session().Lines())
	}
	if replay.Duration() != 2000*time.Second/60 {
		t.Errorf("Duration() = %v", replay.Duration())
	}
}

func TestStoreCustomRules(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rules := tetris.DefaultRules()
	rules.Rows = 16
	rules.MinInterval = 120 * time.Millisecond
	r := tetris.NewRunner(rules, 1, 30)
	r.Advance(tetris.SoftDrop)

	id, err := store.SaveReplay(ctx, "blockfall", r.Recording())
	if err != nil {
		t.Fatal(err)
	}
	replay, err := store.LoadReplay(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if replay.Rules != rules {
		t.Errorf("Rules = %+v, expected %+v", replay.Rules, rules)
	}
}

func TestStoreRejectsInvalidRecording(t *testing.T) {
	store := openTestStore(t)

	zeroRate := sampleRecording(1, 10)
	zeroRate.TickRate = 0
	tickZero := sampleRecording(1, 10)
	tickZero.Events = append([]tetris.Event{{Tick: 0, Command: tetris.MoveLeft}}, tickZero.Events...)

	for name, rec := range map[string]tetris.Recording{"zero tick rate": zeroRate, "event on tick zero": tickZero} {
		_, err := store.SaveReplay(context.Background(), "blockfall", rec)
		if !errors.Is(err, tetris.ErrInvalidRecording) {
			t.Errorf("%s: SaveReplay() error = %v, expected ErrInvalidRecording", name, err)
		}
	}

	list, _ := store.ListReplays(context.Background(), 10)
	if len(list) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestStoreLoadNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadReplay(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadReplay() error = %v, expected ErrNotFound", err)
	}
}

func TestStoreListReplays(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	empty, err := store.ListReplays(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty store should list an empty slice, got %v", empty)
	}

	var ids []string
	for i := range 5 {
		id, err := store.SaveReplay(ctx, "blockfall", sampleRecording(int64(i), 100))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	list, err := store.ListReplays(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 replays, got %d", len(list))
	}
	// Newest first
	if list[0].ID != ids[4] || list[2].ID != ids[2] {
		t.Errorf("unexpected order: %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
	}

	all, err := store.ListReplays(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("default limit should return all 5, got %d", len(all))
	}
}

func TestStoreDeleteReplay(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveReplay(ctx, "blockfall", sampleRecording(3, 500))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteReplay(ctx, id); err != nil {
		t.Fatalf("DeleteReplay() failed: %v", err)
	}
	if _, err := store.LoadReplay(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted replay still loads: %v", err)
	}
	if err := store.DeleteReplay(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, expected ErrNotFound", err)
	}
}

func TestStoreResolveID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveReplay(ctx, "blockfall", sampleRecording(9, 50))
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.ResolveID(ctx, id[:8])
	if err != nil || got != id {
		t.Errorf("ResolveID(%q) = %q, %v", id[:8], got, err)
	}

	for _, prefix := range []string{"", "zzzz", "%"} {
		if _, err := store.ResolveID(ctx, prefix); !errors.Is(err, ErrNotFound) {
			t.Errorf("ResolveID(%q) error = %v, expected ErrNotFound", prefix, err)
		}
	}

	// An empty-ish prefix matching several IDs is ambiguous
	for range 20 {
		if _, err := store.SaveReplay(ctx, "blockfall", sampleRecording(1, 10)); err != nil {
			t.Fatal(err)
		}
	}
	hexDigits := "0123456789abcdef"
	for _, c := range hexDigits {
		list, _ := store.ListReplays(ctx, 100)
		n := 0
		for _, r := range list {
			if strings.HasPrefix(r.ID, string(c)) {
				n++
			}
		}
		if n > 1 {
			_, err := store.ResolveID(ctx, string(c))
			if err == nil || !strings.Contains(err.Error(), "ambiguous") {
				t.Errorf("ResolveID(%q) error = %v, expected ambiguity", string(c), err)
			}
			return
		}
	}
}
