package memory

import (
	"context"
	"sync"

	"github.com/MrEthical07/authservice/domain"
)

// BannedTokenStore is an append-only revocation set.
type BannedTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.Email
}

func NewBannedTokenStore() *BannedTokenStore {
	return &BannedTokenStore{tokens: make(map[string]domain.Email)}
}

// AddToken records token as revoked for email. Adding the same token twice
// keeps the latest email.
func (s *BannedTokenStore) AddToken(_ context.Context, email domain.Email, token string) error {
	s.mu.Lock()
	s.tokens[token] = email
	s.mu.Unlock()
	return nil
}

// VerifyToken reports whether token has been revoked and for which email.
func (s *BannedTokenStore) VerifyToken(_ context.Context, token string) (domain.Email, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.tokens[token]
	return email, ok, nil
}
