package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/oops"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/store"
)

// UserStore keeps user records keyed by email.
type UserStore struct {
	mu     sync.RWMutex
	users  map[domain.Email]domain.StoredUser
	hasher domain.PasswordHasher
}

// NewUserStore returns an empty store that hashes passwords with hasher.
func NewUserStore(hasher domain.PasswordHasher) (*UserStore, error) {
	if hasher == nil {
		return nil, errors.New("memory user store requires a password hasher")
	}
	return &UserStore{
		users:  make(map[domain.Email]domain.StoredUser),
		hasher: hasher,
	}, nil
}

// AddUser hashes and stores a new user. The password is hashed outside the
// lock. The existence check is repeated under the write lock so two
// concurrent signups for one email resolve to exactly one
// ErrUserAlreadyExists.
func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	s.mu.RLock()
	_, exists := s.users[user.Email]
	s.mu.RUnlock()
	if exists {
		return domain.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(ctx, user.Password.Expose())
	if err != nil {
		return oops.Code("USER_STORE_HASH_FAILED").With("operation", "hash password").Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return domain.ErrUserAlreadyExists
	}
	s.users[user.Email] = domain.StoredUser{
		Email:        user.Email,
		PasswordHash: hash,
		Requires2FA:  user.Requires2FA,
	}
	return nil
}

// GetUser returns the stored record or domain.ErrUserNotFound.
func (s *UserStore) GetUser(_ context.Context, email domain.Email) (domain.StoredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return domain.StoredUser{}, domain.ErrUserNotFound
	}
	return user, nil
}

// ValidateUser checks password against the stored hash. Unknown emails still
// pay for one verification so the two failure paths are indistinguishable by
// latency.
func (s *UserStore) ValidateUser(ctx context.Context, email domain.Email, password domain.Password) error {
	user, err := s.GetUser(ctx, email)
	return store.Validate(ctx, s.hasher, user, err, password)
}

// Len reports the number of stored users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
