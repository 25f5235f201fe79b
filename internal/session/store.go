package session

import (
	"context"
	"time"

	"github.com/desertthunder/tunen/internal/models"
)

// DefaultSkew is subtracted from a credential's expiry so a token is refreshed before Spotify starts rejecting it.
const DefaultSkew = 60 * time.Second

// Store maps session ids to OAuth credentials.
type Store interface {
	// Get returns the credential for id. found is false when none is stored.
	Get(ctx context.Context, id string) (cred *models.Credential, found bool, err error)
	// Put stores cred for id, replacing any previous credential atomically.
	Put(ctx context.Context, id string, cred *models.Credential) error
	// Clear removes the credential for id. Clearing a missing id is not an error.
	Clear(ctx context.Context, id string) error
}

// IsExpired reports whether cred must be refreshed at now using [DefaultSkew].
func IsExpired(cred *models.Credential, now time.Time) bool {
	return cred.Expired(now, DefaultSkew)
}
