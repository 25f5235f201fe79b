package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/tunen/internal/models"
)

// MemoryStore is a process-local [Store].
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	cred      models.Credential
	updatedAt time.Time
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements [Store]. The returned credential is a copy.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false, nil
	}
	cred := e.cred
	return &cred, true, nil
}

// Put implements [Store].
func (s *MemoryStore) Put(ctx context.Context, id string, cred *models.Credential) error {
	if id == "" {
		return fmt.Errorf("empty session id")
	}
	if cred == nil {
		return fmt.Errorf("nil credential")
	}
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{cred: *cred, updatedAt: s.now()}
	return nil
}

// Clear implements [Store].
func (s *MemoryStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// List returns a summary of every stored credential, ordered by session id.
func (s *MemoryStore) List(ctx context.Context) ([]models.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SessionSummary, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, models.SessionSummary{
			SessionID:       id,
			ExpiresAt:       e.cred.ExpiresAt(),
			HasRefreshToken: e.cred.RefreshToken != "",
			UpdatedAt:       e.updatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}
