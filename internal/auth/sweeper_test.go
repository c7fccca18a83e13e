package auth

import (
	"testing"
	"time"
)

func TestSweeper_StartPurgesImmediately(t *testing.T) {
	_, db := newTestService(t)
	user, err := db.FindOrCreateUser("sweeper-user")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	now := time.Now().UTC()
	if _, err := db.CreateSession("stale", user.ID, "Alex", now.Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if _, err := db.CreateSession("fresh", user.ID, "Alex", now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	sweeper := NewSweeper(db)
	if err := sweeper.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer sweeper.Stop()

	// Start sweeps before returning, so the stale session is already gone
	if got, _ := db.GetSession("stale"); got != nil {
		t.Fatal("expected stale session purged by the startup sweep")
	}
	if got, _ := db.GetSession("fresh"); got == nil {
		t.Fatal("expected fresh session to survive the sweep")
	}
}
