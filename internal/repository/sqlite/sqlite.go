// Package sqlite implements the Attendee Store on top of SQLite.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, so you need a C compiler and cross-compilation
// becomes painful. modernc.org/sqlite is a pure Go translation of SQLite.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB   : a connection pool (NOT a single connection!)
//   - sql.Row  : a single result row
//   - sql.Rows : multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database, used by tests.
const MemoryPath = ":memory:"

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, verifies the connection and runs migrations.
//
// dbPath examples:
//   - "data/rsvp.db" → file-based database (persistent)
//   - ":memory:"     → in-memory database (tests; lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database, so the
	// pool must never grow past the one connection that ran the migrations.
	if dbPath == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets the admin listing read while an RSVP insert is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Concurrent submissions wait for the write lock instead of failing
	// immediately with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Call it exactly once, usually deferred
// right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS makes it safe to run
// on every startup.
//
// AUTOINCREMENT keeps ids strictly increasing even if the newest row were ever
// removed by hand, which plain INTEGER PRIMARY KEY does not promise.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS attendees (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			name                 TEXT NOT NULL,
			email                TEXT NOT NULL,
			attending            BOOLEAN NOT NULL DEFAULT 0,
			dietary_restrictions TEXT,
			check_in             DATETIME NOT NULL,
			check_out            DATETIME NOT NULL,
			flight_arrival       TEXT,
			flight_departure     TEXT,
			rsvp_date            DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating attendees table: %w", err)
	}

	return nil
}
