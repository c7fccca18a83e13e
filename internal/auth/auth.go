package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bookend/catalog/internal/database"
)

// SessionDuration is how long sessions last
const SessionDuration = 7 * 24 * time.Hour // 7 days

// Service handles sign-in sessions. Users are created lazily on first
// successful sign-in; there is no password authentication.
type Service struct {
	db *database.DB
}

// NewService creates a new auth service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// SignIn resolves the external identity to a local user (creating one on
// first sign-in) and opens a new session carrying the transient display name.
func (s *Service) SignIn(externalID, displayName string) (*database.Session, error) {
	user, err := s.db.FindOrCreateUser(externalID)
	if err != nil {
		return nil, err
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	return s.db.CreateSession(sessionID, user.ID, displayName, time.Now().Add(SessionDuration))
}

// GetSession retrieves a session by ID. Expired sessions are removed and
// reported as absent.
func (s *Service) GetSession(sessionID string) (*database.Session, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.db.DeleteSession(sessionID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return session, nil
}

// SignOut removes a session.
func (s *Service) SignOut(sessionID string) error {
	return s.db.DeleteSession(sessionID)
}

// ExtendSession extends a session's expiration
func (s *Service) ExtendSession(sessionID string) error {
	return s.db.ExtendSession(sessionID, time.Now().Add(SessionDuration))
}

// generateSessionID creates a cryptographically secure session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
