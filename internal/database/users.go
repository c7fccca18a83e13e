package database

import (
	"database/sql"
	"time"
)

// User represents a local user account. The external id is the stable
// subject identifier from the identity provider; it never changes once set.
type User struct {
	ID         int64
	ExternalID string
	CreatedAt  time.Time
}

// FindOrCreateUser looks up a user by external identity id, inserting a new
// row on the first sign-in. Calling it twice with the same external id
// returns the same record both times.
func (db *DB) FindOrCreateUser(externalID string) (*User, error) {
	if externalID == "" {
		return nil, ErrUnauthenticated
	}

	var user *User
	err := db.Transaction(func(tx *sql.Tx) error {
		existing := &User{}
		err := tx.QueryRow(`
			SELECT id, external_id, created_at FROM users WHERE external_id = ?
		`, externalID).Scan(&existing.ID, &existing.ExternalID, &existing.CreatedAt)
		if err == nil {
			user = existing
			return nil
		}
		if err != sql.ErrNoRows {
			return storageErr("find user", err)
		}

		now := time.Now().UTC()
		result, err := tx.Exec(`
			INSERT INTO users (external_id, created_at) VALUES (?, ?)
		`, externalID, now)
		if err != nil {
			return storageErr("create user", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return storageErr("create user", err)
		}

		user = &User{ID: id, ExternalID: externalID, CreatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by internal id.
func (db *DB) GetUserByID(id int64) (*User, error) {
	user := &User{}
	err := db.queryRow(`
		SELECT id, external_id, created_at FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.ExternalID, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get user", err)
	}
	return user, nil
}

// CountUsers returns the number of user rows.
func (db *DB) CountUsers() (int64, error) {
	var count int64
	if err := db.queryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, storageErr("count users", err)
	}
	return count, nil
}
