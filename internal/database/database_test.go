package database

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *DB, externalID string) *User {
	t.Helper()

	user, err := db.FindOrCreateUser(externalID)
	if err != nil {
		t.Fatalf("failed to create user %q: %v", externalID, err)
	}
	return user
}

func TestForeignKeysEnforced(t *testing.T) {
	db := newTestDB(t)

	var enabled int
	if err := db.queryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("failed to read foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatal("expected foreign key enforcement to be on")
	}

	// A dangling category reference must be rejected at the constraint level
	user := newTestUser(t, db, "fk-user")
	_, err := db.exec(`
		INSERT INTO items (name, description, created_at, category_id, user_id)
		VALUES ('Orphan', '', CURRENT_TIMESTAMP, 999, ?)
	`, user.ID)
	if err == nil {
		t.Fatal("expected insert with missing category to fail")
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate returned error: %v", err)
	}

	var version int
	if err := db.queryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("expected schema version %d, got %d", len(migrations), version)
	}
}
