// Package sqlite_test contains integration tests for the SQLite record store.
//
// Tests load the schema through db.GetSchemaSQL() so they always run against
// the authoritative tables.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/putzplan/internal/adapters/sqlite"
	"github.com/example/putzplan/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seed loads a fixture into the test database.
func seed(t *testing.T, database *sql.DB, f *sqlite.Fixture) {
	t.Helper()
	if _, err := sqlite.Seed(context.Background(), database, f); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
}

// activeMember returns a fixture member that passes the default criteria.
func activeMember(id, name string) sqlite.FixtureMember {
	return sqlite.FixtureMember{
		ID:         id,
		Name:       name,
		Onboarding: "Erledigt",
		Categories: []string{"Vereinsmitglied"},
	}
}
