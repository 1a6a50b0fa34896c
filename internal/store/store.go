// Package store is the storage-access object behind every handler and CLI
// command. It owns the embedded SQLite database; callers get explicit
// *Store values instead of a package-level handle so tests can run against
// throwaway databases.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path, applies the
// schema and seeds default categories into an empty database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: db path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The spec's concurrency model is a single editor; one connection also
	// sidesteps table-lock flakiness with the pure-Go driver.
	db.SetMaxOpenConns(1)

	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when a second process peeks at the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.seedCategories(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			sort_order INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS lists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			is_template INTEGER NOT NULL DEFAULT 0,
			is_archived INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			list_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			is_checked INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_list_id ON items(list_id);`,
		`CREATE INDEX IF NOT EXISTS idx_items_text ON items(text);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) seedCategories(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	seed := []struct {
		name  string
		order int
	}{
		{"Clothes", 0},
		{"Tech", 1},
		{"Misc", 2},
	}
	for _, c := range seed {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (name, sort_order) VALUES (?, ?)`, c.name, c.order); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// touchList moves lists.updated_at inside the caller's transaction (or plain
// exec) so list summaries sort recently-edited lists first.
func touchList(ctx context.Context, ex execer, listID int64) error {
	_, err := ex.ExecContext(ctx, `UPDATE lists SET updated_at = datetime('now') WHERE id = ?`, listID)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
