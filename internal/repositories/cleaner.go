package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Cleaner purges expired sessions and the credentials they left behind.
//
// A credential is considered orphaned once it has not been written for longer than the session lifetime,
// since every live session either refreshed it or would have expired by then.
type Cleaner struct {
	sessions    *SessionRepository
	credentials *CredentialRepository
	lifetime    time.Duration
	now         func() time.Time
}

// NewCleaner creates a [Cleaner] over both repositories.
func NewCleaner(sessions *SessionRepository, credentials *CredentialRepository, lifetime time.Duration) *Cleaner {
	return &Cleaner{sessions: sessions, credentials: credentials, lifetime: lifetime, now: time.Now}
}

// Purge runs one cleanup pass and reports how many rows were removed from each table.
func (c *Cleaner) Purge(ctx context.Context) (sessions, credentials int64, err error) {
	sessions, err = c.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, 0, err
	}

	if c.lifetime <= 0 {
		return sessions, 0, nil
	}

	credentials, err = c.credentials.DeleteStale(ctx, c.now().Add(-c.lifetime))
	if err != nil {
		return sessions, 0, err
	}
	return sessions, credentials, nil
}

// Start runs Purge every interval until ctx is cancelled.
//
// Errors are logged and do not stop the loop.
func (c *Cleaner) Start(ctx context.Context, interval time.Duration, logger *log.Logger) error {
	if interval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %v", interval)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s, cr, err := c.Purge(ctx)
				if err != nil {
					logger.Error("session cleanup failed", "error", err)
					continue
				}
				if s > 0 || cr > 0 {
					logger.Debug("session cleanup", "sessions", s, "credentials", cr)
				}
			}
		}
	}()
	return nil
}
