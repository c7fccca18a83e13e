package database

import (
	"database/sql"
	"time"
)

// Session represents a signed-in browser session. DisplayName is the
// transient name supplied by the identity provider at sign-in; it lives on
// the session and is gone when the session is.
type Session struct {
	ID          string
	UserID      int64
	DisplayName string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// CreateSession inserts a new session record.
func (db *DB) CreateSession(id string, userID int64, displayName string, expiresAt time.Time) (*Session, error) {
	now := time.Now().UTC()
	_, err := db.exec(`
		INSERT INTO sessions (id, user_id, display_name, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, displayName, expiresAt, now)
	if err != nil {
		return nil, storageErr("create session", err)
	}

	return &Session{
		ID:          id,
		UserID:      userID,
		DisplayName: displayName,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}, nil
}

// GetSession retrieves a session by ID. Returns nil for an unknown session.
func (db *DB) GetSession(id string) (*Session, error) {
	session := &Session{}
	err := db.queryRow(`
		SELECT id, user_id, display_name, expires_at, created_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.UserID, &session.DisplayName, &session.ExpiresAt, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get session", err)
	}
	return session, nil
}

// DeleteSession removes a session by ID.
func (db *DB) DeleteSession(id string) error {
	if _, err := db.exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return storageErr("delete session", err)
	}
	return nil
}

// ExtendSession updates a session's expiration time.
func (db *DB) ExtendSession(id string, expiresAt time.Time) error {
	if _, err := db.exec("UPDATE sessions SET expires_at = ? WHERE id = ?", expiresAt, id); err != nil {
		return storageErr("extend session", err)
	}
	return nil
}

// PurgeExpiredSessions removes all sessions past their expiry.
func (db *DB) PurgeExpiredSessions() (int64, error) {
	result, err := db.exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, storageErr("purge sessions", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, storageErr("purge sessions", err)
	}
	return removed, nil
}
