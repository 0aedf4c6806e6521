package memory

import (
	"context"
	"crypto/subtle"
	"sync"

	"github.com/MrEthical07/authservice/domain"
)

type challenge struct {
	id   domain.LoginAttemptID
	code domain.TwoFACode
}

// TwoFACodeStore keeps the latest two-factor challenge per email.
type TwoFACodeStore struct {
	mu    sync.RWMutex
	codes map[domain.Email]challenge
}

func NewTwoFACodeStore() *TwoFACodeStore {
	return &TwoFACodeStore{codes: make(map[domain.Email]challenge)}
}

// AddCode replaces any outstanding challenge for email.
func (s *TwoFACodeStore) AddCode(_ context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	s.mu.Lock()
	s.codes[email] = challenge{id: id, code: code}
	s.mu.Unlock()
	return nil
}

// RemoveCode deletes the challenge, failing with
// domain.ErrLoginAttemptIDNotFound when none exists.
func (s *TwoFACodeStore) RemoveCode(_ context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[email]; !ok {
		return domain.ErrLoginAttemptIDNotFound
	}
	delete(s.codes, email)
	return nil
}

func (s *TwoFACodeStore) GetCode(_ context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.codes[email]
	if !ok {
		return "", "", domain.ErrLoginAttemptIDNotFound
	}
	return c.id, c.code, nil
}

// ConsumeCode removes the challenge when both id and code match.
func (s *TwoFACodeStore) ConsumeCode(_ context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[email]
	if !ok {
		return domain.ErrLoginAttemptIDNotFound
	}
	idMatch := subtle.ConstantTimeCompare([]byte(c.id), []byte(id))
	codeMatch := subtle.ConstantTimeCompare([]byte(c.code), []byte(code))
	if idMatch&codeMatch != 1 {
		return domain.ErrChallengeMismatch
	}
	delete(s.codes, email)
	return nil
}
