package database

import (
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "session-user")

	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	created, err := db.CreateSession("abc123", user.ID, "Alex", expires)
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if created.ID != "abc123" {
		t.Fatalf("expected session id to round-trip, got %q", created.ID)
	}

	got, err := db.GetSession("abc123")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.UserID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.UserID)
	}
	if got.DisplayName != "Alex" {
		t.Fatalf("expected display name to round-trip, got %q", got.DisplayName)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Fatalf("expected expiry %v, got %v", expires, got.ExpiresAt)
	}
}

func TestGetSession_UnknownReturnsNil(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetSession("nope")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown session, got %v", got)
	}
}

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "session-user")

	if _, err := db.CreateSession("abc123", user.ID, "Alex", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if err := db.DeleteSession("abc123"); err != nil {
		t.Fatalf("DeleteSession returned error: %v", err)
	}
	got, err := db.GetSession("abc123")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if got != nil {
		t.Fatal("expected session gone after delete")
	}

	// Deleting an unknown session is not an error
	if err := db.DeleteSession("nope"); err != nil {
		t.Fatalf("DeleteSession for unknown id returned error: %v", err)
	}
}

func TestExtendSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "session-user")

	if _, err := db.CreateSession("abc123", user.ID, "Alex", time.Now().UTC().Add(time.Minute)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	later := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	if err := db.ExtendSession("abc123", later); err != nil {
		t.Fatalf("ExtendSession returned error: %v", err)
	}

	got, err := db.GetSession("abc123")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if !got.ExpiresAt.Equal(later) {
		t.Fatalf("expected expiry %v, got %v", later, got.ExpiresAt)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "session-user")

	now := time.Now().UTC()
	if _, err := db.CreateSession("stale", user.ID, "Alex", now.Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if _, err := db.CreateSession("fresh", user.ID, "Alex", now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	removed, err := db.PurgeExpiredSessions()
	if err != nil {
		t.Fatalf("PurgeExpiredSessions returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 session purged, got %d", removed)
	}

	if got, _ := db.GetSession("stale"); got != nil {
		t.Fatal("expected stale session purged")
	}
	if got, _ := db.GetSession("fresh"); got == nil {
		t.Fatal("expected fresh session to survive")
	}
}
