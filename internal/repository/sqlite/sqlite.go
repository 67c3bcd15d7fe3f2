// Package sqlite implements the row store on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open connects to dsn (e.g. "file:portfolio.db") and creates the schema.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serialises writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema is safe to call multiple times.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS project_media (
	id TEXT PRIMARY KEY,
	project_slug TEXT NOT NULL,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL,
	file_url TEXT NOT NULL,
	file_type TEXT NOT NULL CHECK (file_type IN ('image', 'video', 'pdf')),
	content_type TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_project_media_slug ON project_media(project_slug);
CREATE INDEX IF NOT EXISTS idx_project_media_category ON project_media(category);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL,
	visited_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_visitors_visited_at ON visitors(visited_at);
`

// Fixed width so that lexical order in SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		strings.Contains(serr.Error(), "UNIQUE constraint failed")
}
