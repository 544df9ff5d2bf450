package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/richman/game/engine"
)

// ErrEmptyPath is returned when no database path is configured
var ErrEmptyPath = errors.New("empty results db path")

// Standing is one player's final position
type Standing struct {
	PlayerID int                `json:"player_id"`
	Name     string             `json:"name"`
	Kind     engine.ControlKind `json:"kind"`
	Money    int                `json:"money"`
	Loan     int                `json:"loan"`
	NetWorth int                `json:"net_worth"`
	Bankrupt bool               `json:"bankrupt"`
}

// Result is a finished game
type Result struct {
	ID         int64      `json:"id"`
	SessionID  string     `json:"session_id"`
	ConfigName string     `json:"config_name"`
	Winner     string     `json:"winner"`
	Turns      int        `json:"turns"`
	Rolls      int        `json:"rolls"`
	Standings  []Standing `json:"standings"`
	FinishedAt time.Time  `json:"finished_at"`
}

// WinCount is a leaderboard row
type WinCount struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// FromState builds a result from a finished game. Standings are ordered by net worth.
func FromState(sessionID string, state *engine.GameState, at time.Time) Result {
	r := Result{
		SessionID:  sessionID,
		ConfigName: state.ConfigName,
		Winner:     "Nobody",
		Turns:      state.Turn,
		Rolls:      state.TotalRolls,
		FinishedAt: at.UTC(),
	}
	for _, p := range state.Players {
		if state.WinnerID != nil && *state.WinnerID == p.ID {
			r.Winner = p.Name
		}
		r.Standings = append(r.Standings, Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Kind:     p.Kind,
			Money:    p.Money,
			Loan:     p.Loan,
			NetWorth: engine.NetWorth(state, p),
			Bankrupt: p.Bankrupt,
		})
	}
	sort.SliceStable(r.Standings, func(i, j int) bool {
		return r.Standings[i].NetWorth > r.Standings[j].NetWorth
	})
	return r
}

// Store keeps finished games in SQLite
type Store struct {
	db *sql.DB
}

// Open opens or creates the results database at path. ":memory:" keeps it in memory.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			config_name TEXT NOT NULL,
			winner TEXT NOT NULL,
			turns INTEGER NOT NULL,
			rolls INTEGER NOT NULL,
			standings_json TEXT NOT NULL,
			finished_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_winner ON results(winner);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record stores a result. A session is recorded once; later calls for the same
// session are ignored and return 0.
func (s *Store) Record(ctx context.Context, r Result) (int64, error) {
	standings, err := json.Marshal(r.Standings)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results (session_id, config_name, winner, turns, rolls, standings_json, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.ConfigName, r.Winner, r.Turns, r.Rolls, string(standings), r.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("record result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

// List returns the most recent results first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Result, error) {
	q := `SELECT id, session_id, config_name, winner, turns, rolls, standings_json, finished_at
		  FROM results ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var (
			r         Result
			standings string
			finished  string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ConfigName, &r.Winner, &r.Turns, &r.Rolls, &standings, &finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(standings), &r.Standings); err != nil {
			return nil, fmt.Errorf("decode standings of %s: %w", r.SessionID, err)
		}
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Leaderboard counts wins per player name, most wins first
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]WinCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT winner, COUNT(*) AS wins FROM results
		 WHERE winner != 'Nobody'
		 GROUP BY winner ORDER BY wins DESC, winner ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	out := []WinCount{}
	for rows.Next() {
		var w WinCount
		if err := rows.Scan(&w.Name, &w.Wins); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
