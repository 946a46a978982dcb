package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	entry_key TEXT PRIMARY KEY,
	entry_value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// SQLiteStoreConfig configures the SQLite-backed store.
type SQLiteStoreConfig struct {
	// DSN is the database connection string, usually a file path.
	DSN string
}

// SQLiteStore persists entries in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and ensures the schema.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("kvstore sqlite: DSN is required")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("kvstore sqlite: open: %w", err)
	}
	// A single writer connection keeps ":memory:" databases coherent too.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore sqlite: set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore sqlite: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT entry_value FROM kv_entries WHERE entry_key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, unavailable("sqlite get", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_entries (entry_key, entry_value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(entry_key) DO UPDATE SET
	entry_value = excluded.entry_value,
	updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return unavailable("sqlite set", err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE entry_key = ?`, key); err != nil {
		return unavailable("sqlite remove", err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT entry_key FROM kv_entries
WHERE substr(entry_key, 1, ?) = ?
ORDER BY entry_key ASC`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, unavailable("sqlite keys", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, unavailable("sqlite keys scan", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("sqlite keys rows", err)
	}
	return keys, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
