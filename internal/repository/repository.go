// Package repository provides CRUD and query access to projects, features,
// tasks, sections, dependencies and role transitions, backed by the
// pluggable db.Database connection (SQLite or Turso).
package repository

import (
	"context"

	"github.com/taskorchestrator/engine/internal/db"
)

// querier is satisfied by both db.Database and db.Tx, letting repository
// methods run either against a bare connection or inside a
// caller-managed transaction without duplicating query logic.
type querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (db.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) db.Row
	Exec(ctx context.Context, query string, args ...interface{}) (db.Result, error)
}

// DB wraps the generic database connection shared by every repository.
type DB struct {
	db.Database
}

// NewDB wraps an already-connected, already-migrated database connection.
func NewDB(database db.Database) *DB {
	return &DB{database}
}
