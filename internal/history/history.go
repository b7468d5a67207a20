// Package history persists named circuit snapshots in a local SQLite
// database, giving a design session an undoable trail of saved
// configurations without inventing a file format: each snapshot is the
// engine's own document, stored as a JSON blob.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/emberfield/nacalc/internal/circuit"
)

// ErrNotFound is returned when no snapshot exists under the given name.
var ErrNotFound = errors.New("snapshot not found")

// schema contains the DDL executed on first open. IF NOT EXISTS makes it
// safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    name     TEXT PRIMARY KEY,
    doc      TEXT NOT NULL,
    saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Entry describes one stored snapshot.
type Entry struct {
	Name    string
	SavedAt time.Time
}

// Store is a SQLite-backed snapshot store in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database at dbPath, enables WAL mode
// and a busy timeout, and creates the schema if needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// One connection: SQLite has a single writer, and one connection avoids
	// SQLITE_BUSY contention between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts a snapshot under the given name.
func (s *Store) Save(ctx context.Context, name string, doc circuit.Document) error {
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("history: marshal snapshot %q: %w", name, err)
	}
	const q = `
		INSERT INTO snapshots (name, doc, saved_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, saved_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, q, name, string(blob)); err != nil {
		return fmt.Errorf("history: save snapshot %q: %w", name, err)
	}
	return nil
}

// Load returns the snapshot stored under name, or ErrNotFound.
func (s *Store) Load(ctx context.Context, name string) (circuit.Document, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM snapshots WHERE name = ?", name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return circuit.Document{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return circuit.Document{}, fmt.Errorf("history: load snapshot %q: %w", name, err)
	}

	var doc circuit.Document
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		return circuit.Document{}, fmt.Errorf("history: decode snapshot %q: %w", name, err)
	}
	return doc, nil
}

// List returns every stored snapshot, most recent first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, saved_at FROM snapshots ORDER BY saved_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("history: list snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.Name, &ts); err != nil {
			return nil, fmt.Errorf("history: scan snapshot row: %w", err)
		}
		savedAt, parseErr := parseTimestamp(ts)
		if parseErr != nil {
			return nil, fmt.Errorf("history: parse snapshot timestamp: %w", parseErr)
		}
		e.SavedAt = savedAt
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate snapshots: %w", err)
	}
	return entries, nil
}

// Delete removes the snapshot stored under name. Deleting an absent name
// returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("history: delete snapshot %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: delete rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// timestampFormats lists the formats SQLite drivers may produce for
// CURRENT_TIMESTAMP. modernc.org/sqlite typically returns RFC 3339, while
// canonical SQLite returns the space-separated DateTime format.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
