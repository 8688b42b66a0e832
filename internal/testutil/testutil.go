package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/repository/postgres"
	"github.com/pratik-mahalle/sitevoice/migrations"
)

// NewTestDB creates an in-memory SQLite database with every migration applied.
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := postgres.New(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { CleanupDB(db) })

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupDB closes the test database
func CleanupDB(db *sqlx.DB) {
	if db != nil {
		db.Close()
	}
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string {
	return &s
}
