// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package sqlite implements the store interfaces on SQLite with the
// sqlite-vec extension providing the cosine distance operator.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"

	"github.com/embedstore-dev/embedstore/internal/store"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface checks.
var (
	_ store.Catalog      = (*DB)(nil)
	_ store.ContentStore = (*DB)(nil)
)

// DB implements store.Catalog and store.ContentStore backed by a single
// SQLite database: one models table, one stores table, and one
// dynamically-named content table per store.
type DB struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and initialises the
// models and stores catalog tables.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := migrateCatalog(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating catalog tables: %w", err)
	}

	return &DB{db: db}, nil
}

func migrateCatalog(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS models (
	id          TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	dimensions  INTEGER NOT NULL CHECK (dimensions > 0)
);

CREATE TABLE IF NOT EXISTS stores (
	id          TEXT PRIMARY KEY,
	model       TEXT NOT NULL REFERENCES models(id),
	description TEXT NOT NULL DEFAULT ''
);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// tableName validates storeID and returns it quoted for splicing into SQL
// text. Every dynamically-built statement goes through here; data values
// are always bound, never interpolated.
func tableName(storeID string) (string, error) {
	if err := store.ValidateIdentifier(storeID); err != nil {
		return "", err
	}
	return `"` + storeID + `"`, nil
}

// isUniqueViolation reports whether err is a SQLite unique or primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
