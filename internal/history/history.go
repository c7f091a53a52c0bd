// Package history provides a SQLite-backed record of the questions users
// asked the bot: who asked, which source they searched, how many snippets
// came back, and how long the fetch took. It exists for operators — the
// answer path never depends on it, and a failed write is logged, not
// surfaced to the user.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Question is one recorded /ask invocation.
type Question struct {
	// User is the asking user's ID.
	User string
	// Guild is the guild (server) the question was asked in, or "DM".
	Guild string
	// Source is the documentation source label the user selected.
	Source string
	// Text is the question itself.
	Text string
	// Snippets is how many snippets the fetch returned after the join.
	Snippets int
	// Elapsed is the total fetch duration.
	Elapsed time.Duration
	// AskedAt is when the question was recorded.
	AskedAt time.Time
}

// Store persists and retrieves asked questions. Implementations must be
// safe for concurrent use.
type Store interface {
	// Record persists one asked question.
	Record(ctx context.Context, q Question) error
	// Recent returns the most recent n questions, newest-first.
	Recent(ctx context.Context, n int) ([]Question, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the question history database.
// It resolves to ~/.docsbot/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("history: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".docsbot")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("history: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS questions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user        TEXT    NOT NULL,
    guild       TEXT    NOT NULL,
    source      TEXT    NOT NULL,
    question    TEXT    NOT NULL,
    snippets    INTEGER NOT NULL,
    elapsed_ms  INTEGER NOT NULL,
    asked_at    INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_questions_asked_at
    ON questions (asked_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Record persists one asked question. A zero AskedAt is filled with now.
func (s *SQLiteStore) Record(ctx context.Context, q Question) error {
	askedAt := q.AskedAt
	if askedAt.IsZero() {
		askedAt = time.Now()
	}

	const stmt = `INSERT INTO questions (user, guild, source, question, snippets, elapsed_ms, asked_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		q.User, q.Guild, q.Source, q.Text, q.Snippets, q.Elapsed.Milliseconds(), askedAt.Unix())
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Recent returns the most recent n questions, newest-first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Question, error) {
	const q = `
SELECT user, guild, source, question, snippets, elapsed_ms, asked_at
FROM   questions
ORDER  BY asked_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var rec Question
		var elapsedMS, ts int64
		if err := rows.Scan(&rec.User, &rec.Guild, &rec.Source, &rec.Text, &rec.Snippets, &elapsedMS, &ts); err != nil {
			return nil, fmt.Errorf("history: recent scan: %w", err)
		}
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		rec.AskedAt = time.Unix(ts, 0)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent rows: %w", err)
	}
	return out, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("history: close: %w", err)
	}
	return nil
}
