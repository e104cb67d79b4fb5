// Package history implements the match history store, persisting finished
// matches to SQLite and serving them back for the history command.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Record is one finished match.
type Record struct {
	ID       int64
	Mode     string
	Players  []string
	Winner   string
	Frames   uint32
	Duration time.Duration
	PlayedAt time.Time
}

// Store wraps a SQLite database holding finished matches.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewStore opens or creates the history database at the given path.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", dbPath, err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Warn().Err(err).Msg("failed to enable WAL mode")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("history database ping failed: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", dbPath).Msg("history database opened")
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			mode        TEXT NOT NULL,
			players     TEXT NOT NULL,
			winner      TEXT NOT NULL DEFAULT '',
			frames      INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			played_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_played_at ON matches(played_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists one finished match.
func (s *Store) Insert(rec Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO matches (mode, players, winner, frames, duration_ms, played_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Mode,
		strings.Join(rec.Players, ","),
		rec.Winner,
		rec.Frames,
		rec.Duration.Milliseconds(),
		rec.PlayedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert match: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit matches, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, mode, players, winner, frames, duration_ms, played_at
		 FROM matches ORDER BY played_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var players string
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.Mode, &players, &rec.Winner, &rec.Frames, &durationMS, &rec.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		rec.Players = strings.Split(players, ",")
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of stored matches.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}
