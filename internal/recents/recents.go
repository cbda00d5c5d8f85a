// Package recents persists the list of recently opened stages in a
// small sqlite database.
package recents

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one recently opened stage.
type Entry struct {
	ID          string
	Path        string
	DisplayName string
	OpenedAt    time.Time
}

// Store is a sqlite-backed recents store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

// Touch records that a stage was opened now, inserting or refreshing
// its entry.
func (s *Store) Touch(ctx context.Context, stagePath, displayName string) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`UPDATE recents SET display_name = ?, opened_at = ? WHERE path = ?`,
		displayName, now, stagePath)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recents(id, path, display_name, opened_at) VALUES(?, ?, ?, ?)`,
		uuid.NewString(), stagePath, displayName, now)
	return err
}

// List returns the most recently opened stages, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, display_name, opened_at FROM recents ORDER BY opened_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Path, &e.DisplayName, &e.OpenedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune keeps only the newest keep entries.
func (s *Store) Prune(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
	DELETE FROM recents WHERE id NOT IN (
	 SELECT id FROM recents ORDER BY opened_at DESC LIMIT ?
	)`, keep)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
