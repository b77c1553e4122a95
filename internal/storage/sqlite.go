// Package storage provides SQLite-based persistence for finished runs and
// per-player results. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is one finished match.
type Run struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Ticks     uint64
	Seed      int64
	AIDir     string
	Mode      string // controller fan-out mode
	Players   []RunPlayer
}

// Duration returns the wall-clock length of the run.
func (r Run) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// RunPlayer is one player's result in a run.
type RunPlayer struct {
	RunID       string
	PlayerID    int
	Username    string
	IsAI        bool
	Score       int
	Deaths      int
	FinalLength int
	Misses      int
	Failure     string // empty unless the controller was disabled
}

// LeaderEntry aggregates results per username.
type LeaderEntry struct {
	Username   string
	IsAI       bool
	Runs       int
	BestScore  int
	TotalScore int
	Deaths     int
	Failures   int
}

// Summary contains aggregated statistics over all runs.
type Summary struct {
	Runs       int
	TotalTicks int64
	LastPlayed time.Time
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			ai_dir TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS run_players (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			player_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			is_ai INTEGER NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			deaths INTEGER NOT NULL DEFAULT 0,
			final_length INTEGER NOT NULL DEFAULT 0,
			misses INTEGER NOT NULL DEFAULT 0,
			failure TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, player_id)
		);
		CREATE INDEX IF NOT EXISTS idx_run_players_username ON run_players(username);
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

// SaveRun records a run and its players in one transaction. A run without
// an ID gets a new one. Returns the run ID.
func (s *Store) SaveRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, ended_at, ticks, seed, ai_dir, mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.EndedAt),
		int64(run.Ticks),
		run.Seed,
		run.AIDir,
		run.Mode,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	for _, p := range run.Players {
		_, err := tx.Exec(
			`INSERT INTO run_players
			 (run_id, player_id, username, is_ai, score, deaths, final_length, misses, failure)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			p.PlayerID,
			p.Username,
			p.IsAI,
			p.Score,
			p.Deaths,
			p.FinalLength,
			p.Misses,
			p.Failure,
		)
		if err != nil {
			return "", fmt.Errorf("storage: cannot save player %d: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return run.ID, nil
}

// RecentRuns retrieves the most recent runs, newest first. Players are not
// loaded; use RunPlayers.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, ended_at, ticks, seed, ai_dir, mode
		 FROM runs
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RunByID retrieves a run with its players. Returns nil if it does not exist.
func (s *Store) RunByID(runID string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, started_at, ended_at, ticks, seed, ai_dir, mode
		 FROM runs
		 WHERE id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.Players, err = s.RunPlayers(runID)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var started, ended any
	var ticks int64
	if err := row.Scan(&run.ID, &started, &ended, &ticks, &run.Seed, &run.AIDir, &run.Mode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("storage: cannot scan run: %w", err)
	}
	run.Ticks = uint64(ticks)
	run.StartedAt = parseTime(started)
	run.EndedAt = parseTime(ended)
	return run, nil
}

// RunPlayers retrieves the players of a run, ordered by player id.
func (s *Store) RunPlayers(runID string) ([]RunPlayer, error) {
	rows, err := s.db.Query(
		`SELECT run_id, player_id, username, is_ai, score, deaths, final_length, misses, failure
		 FROM run_players
		 WHERE run_id = ?
		 ORDER BY player_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run players: %w", err)
	}
	defer rows.Close()

	var players []RunPlayer
	for rows.Next() {
		var p RunPlayer
		if err := rows.Scan(
			&p.RunID,
			&p.PlayerID,
			&p.Username,
			&p.IsAI,
			&p.Score,
			&p.Deaths,
			&p.FinalLength,
			&p.Misses,
			&p.Failure,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return players, nil
}

// Leaderboard ranks usernames by their best score across all runs.
func (s *Store) Leaderboard(limit int) ([]LeaderEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT username, MAX(is_ai), COUNT(*), MAX(score), SUM(score), SUM(deaths),
		        SUM(CASE WHEN failure != '' THEN 1 ELSE 0 END)
		 FROM run_players
		 GROUP BY username
		 ORDER BY MAX(score) DESC, SUM(score) DESC, username
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderEntry
	for rows.Next() {
		var e LeaderEntry
		if err := rows.Scan(&e.Username, &e.IsAI, &e.Runs, &e.BestScore, &e.TotalScore, &e.Deaths, &e.Failures); err != nil {
			return nil, fmt.Errorf("storage: cannot scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// GetSummary retrieves aggregated statistics over all runs.
func (s *Store) GetSummary() (*Summary, error) {
	sum := &Summary{}
	var last any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(ticks), 0), MAX(started_at) FROM runs`,
	).Scan(&sum.Runs, &sum.TotalTicks, &last)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get summary: %w", err)
	}
	sum.LastPlayed = parseTime(last)
	return sum, nil
}

// ClearRuns deletes every run and player result.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM run_players"); err != nil {
		return fmt.Errorf("storage: cannot clear run players: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

const timeLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string, depending on what the
// driver hands back for a DATETIME column.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case []byte:
		return parseTime(string(v))
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
