package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/internal"
)

// BannedTokenStore keeps revoked tokens as plain string keys. The raw token
// never reaches Redis; keys carry its SHA-256 fingerprint.
type BannedTokenStore struct {
	redis  Client
	prefix string
}

func NewBannedTokenStore(client Client, prefix string) *BannedTokenStore {
	return &BannedTokenStore{redis: client, prefix: normalizePrefix(prefix)}
}

func (s *BannedTokenStore) key(token string) string {
	return s.prefix + ":bt:" + internal.TokenFingerprint(token)
}

// AddToken bans token for email. Entries never expire. A revoked token stays
// banned for the lifetime of the Redis dataset.
func (s *BannedTokenStore) AddToken(ctx context.Context, email domain.Email, token string) error {
	if err := s.redis.Set(ctx, s.key(token), email.String(), 0).Err(); err != nil {
		return backendError("ban token", err)
	}
	return nil
}

func (s *BannedTokenStore) VerifyToken(ctx context.Context, token string) (domain.Email, bool, error) {
	email, err := s.redis.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, backendError("lookup banned token", err)
	}
	return domain.Email(email), true, nil
}
