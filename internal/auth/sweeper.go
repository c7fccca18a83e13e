package auth

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/bookend/catalog/internal/database"
)

// Sweeper periodically removes expired sessions so the sessions table does
// not grow without bound.
type Sweeper struct {
	db   *database.DB
	cron *cron.Cron
}

// NewSweeper creates a session sweeper.
func NewSweeper(db *database.DB) *Sweeper {
	return &Sweeper{
		db:   db,
		cron: cron.New(),
	}
}

// Start runs one sweep synchronously, then schedules the hourly sweep.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweep); err != nil {
		return err
	}
	s.sweep()
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	removed, err := s.db.PurgeExpiredSessions()
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired sessions")
		return
	}
	if removed > 0 {
		log.Debug().Int64("removed", removed).Msg("Purged expired sessions")
	}
}
