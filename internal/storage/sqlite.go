// Package storage provides SQLite-based persistence for game replays.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/blockfall/internal/tetris"
)

// DefaultListLimit is used when ListReplays gets a non-positive limit.
const DefaultListLimit = 20

// ErrNotFound is returned when a replay does not exist.
var ErrNotFound = errors.New("storage: replay not found")

// Store manages the SQLite database connection for replay persistence.
type Store struct {
	db *sql.DB
}

// ReplaySummary describes a stored replay without its events.
type ReplaySummary struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Seed      int64     `json:"seed"`
	TickRate  int       `json:"tick_rate"`
	Ticks     uint64    `json:"ticks"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Lines     int       `json:"lines"`
	GameOver  bool      `json:"game_over"`
	CreatedAt time.Time `json:"created_at"`
}

// Duration returns the simulated length of the replay.
func (r ReplaySummary) Duration() time.Duration {
	if r.TickRate <= 0 {
		return 0
	}
	return time.Duration(r.Ticks) * time.Second / time.Duration(r.TickRate)
}

// Replay is a stored replay with everything needed to re-run it.
type Replay struct {
	ReplaySummary
	Rules  tetris.Rules   `json:"rules"`
	Events []tetris.Event `json:"events"`
}

// Recording rebuilds the engine recording.
func (r Replay) Recording() tetris.Recording {
	return tetris.Recording{
		Seed:     r.Seed,
		TickRate: r.TickRate,
		Ticks:    r.Ticks,
		Rules:    r.Rules,
		Events:   r.Events,
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := ExpandPath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS replays (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tick_rate INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			game_over INTEGER NOT NULL DEFAULT 0,
			rules TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_created ON replays(created_at DESC);

		CREATE TABLE IF NOT EXISTS replay_events (
			replay_id TEXT NOT NULL REFERENCES replays(id),
			seq INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			command TEXT NOT NULL,
			PRIMARY KEY (replay_id, seq)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveReplay stores a recording for the given game and returns the new
// replay ID. The recording is re-simulated first so that only playable
// replays are stored and the final score is recorded alongside.
func (s *Store) SaveReplay(ctx context.Context, gameID string, rec tetris.Recording) (string, error) {
	final, err := tetris.Replay(rec)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save replay: %w", err)
	}
	rules, err := yaml.Marshal(rec.Rules)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode rules: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	id := uuid.NewString()
	session := final.Session()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO replays (id, game_id, seed, tick_rate, ticks, score, level, lines, game_over, rules)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, gameID, rec.Seed, rec.TickRate, int64(rec.Ticks),
		session.Score(), session.Level(), session.Lines(), session.GameOver(), string(rules),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save replay: %w", err)
	}

	if len(rec.Events) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO replay_events (replay_id, seq, tick, command) VALUES (?, ?, ?, ?)")
		if err != nil {
			return "", fmt.Errorf("storage: cannot prepare events: %w", err)
		}
		defer stmt.Close()

		for i, ev := range rec.Events {
			if _, err := stmt.ExecContext(ctx, id, i, int64(ev.Tick), ev.Command.String()); err != nil {
				return "", fmt.Errorf("storage: cannot save event %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit replay: %w", err)
	}
	return id, nil
}

const summaryColumns = `id, game_id, seed, tick_rate, ticks, score, level, lines, game_over, created_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, extra ...any) (ReplaySummary, error) {
	var r ReplaySummary
	var ticks int64
	var createdAt any
	dest := append([]any{
		&r.ID, &r.GameID, &r.Seed, &r.TickRate, &ticks,
		&r.Score, &r.Level, &r.Lines, &r.GameOver, &createdAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	r.Ticks = uint64(ticks)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// ListReplays retrieves the most recent replays, newest first.
func (s *Store) ListReplays(ctx context.Context, limit int) ([]ReplaySummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+`
		 FROM replays
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	entries := []ReplaySummary{}
	for rows.Next() {
		e, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// LoadReplay retrieves a replay and its events by ID.
// Unknown IDs yield ErrNotFound.
func (s *Store) LoadReplay(ctx context.Context, id string) (*Replay, error) {
	var rules string
	row := s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+`, rules FROM replays WHERE id = ?`, id)
	summary, err := scanSummary(row, &rules)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}

	replay := &Replay{ReplaySummary: summary, Events: []tetris.Event{}}
	if err := yaml.Unmarshal([]byte(rules), &replay.Rules); err != nil {
		return nil, fmt.Errorf("storage: cannot decode rules: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, command FROM replay_events WHERE replay_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tick int64
		var command string
		if err := rows.Scan(&tick, &command); err != nil {
			return nil, fmt.Errorf("storage: cannot scan event: %w", err)
		}
		var ev tetris.Event
		ev.Tick = uint64(tick)
		if err := ev.Command.UnmarshalText([]byte(command)); err != nil {
			return nil, fmt.Errorf("storage: bad event: %w", err)
		}
		replay.Events = append(replay.Events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return replay, nil
}

// DeleteReplay removes a replay and its events.
func (s *Store) DeleteReplay(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM replay_events WHERE replay_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete events: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM replays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// ResolveID expands a unique ID prefix (as printed by short listings) to a
// full replay ID.
func (s *Store) ResolveID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" || strings.ContainsAny(prefix, "%_") {
		return "", fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM replays WHERE id LIKE ? LIMIT 2", prefix+"%")
	if err != nil {
		return "", fmt.Errorf("storage: cannot query replay ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("storage: ambiguous replay id %q", prefix)
	}
}
