// Package test provides a shared database bootstrap for package tests
// across the module: a fresh, fully migrated database per call so
// concurrent tests never share state.
package test

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/db"
)

// NewDB returns a freshly migrated sqlite database backed by its own
// temp file, so concurrent tests never share state.
func NewDB() db.Database {
	f, err := os.CreateTemp("", "taskorchestrator-test-*.db")
	if err != nil {
		panic("failed to create temp test database: " + err.Error())
	}
	path := f.Name()
	f.Close()
	os.Remove(path)

	database, err := db.InitDB(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    path,
	})
	if err != nil {
		panic("failed to initialize test database: " + err.Error())
	}
	return database
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// UniqueName returns a collision-resistant name for test fixtures.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
