// Package testutil provides an in-memory SQLite database for repository
// and handler tests. The pure Go driver keeps the test suite free of CGO
// and of a running Postgres.
package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// schema mirrors internal/db/migrations in SQLite dialect.
const schema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    public_id TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL UNIQUE,
    admin BOOLEAN NOT NULL DEFAULT FALSE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE todos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    todo_name TEXT NOT NULL,
    is_complete BOOLEAN NOT NULL DEFAULT FALSE,
    author TEXT NOT NULL REFERENCES users (username) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (author, todo_name)
);
`

// OpenInMemoryDB opens an in-memory SQLite database with the application
// schema applied. The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()

	// Shared cache keeps the database alive across the pool's connections;
	// the pragma enables foreign keys on every new connection so cascades fire.
	dsn := "file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A single connection avoids table-lock flakiness in shared-cache mode.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply test schema: %v", err)
	}
	return db
}
