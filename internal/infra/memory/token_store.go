package memory

import (
	"context"
	"sync"
	"time"
)

// TokenStore is an in-memory implementation of app.RevocationStore.
type TokenStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	revoked map[string]time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		clock:   time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (s *TokenStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.revoked[tokenID] = now.Add(ttl)
	// expired entries are swept on write
	for id, until := range s.revoked {
		if !until.After(now) {
			delete(s.revoked, id)
		}
	}
	return nil
}

func (s *TokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	until, ok := s.revoked[tokenID]
	return ok && until.After(s.clock()), nil
}
