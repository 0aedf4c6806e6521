package jwt

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/domain"
)

// ErrTokenRevoked is returned for a well-formed, unexpired token that is
// present in the revocation list.
var ErrTokenRevoked = errors.New("token revoked")

// RevocationList reports whether a token has been banned.
type RevocationList interface {
	VerifyToken(ctx context.Context, token string) (domain.Email, bool, error)
}

// Codec issues session tokens and validates them against a revocation list.
type Codec struct {
	manager *Manager
	banned  RevocationList
}

// NewCodec pairs a Manager with the revocation list consulted on Validate.
func NewCodec(manager *Manager, banned RevocationList) (*Codec, error) {
	if manager == nil {
		return nil, errors.New("codec requires a token manager")
	}
	if banned == nil {
		return nil, errors.New("codec requires a revocation list")
	}
	return &Codec{manager: manager, banned: banned}, nil
}

// Issue signs a token whose subject is email.
func (c *Codec) Issue(email domain.Email) (string, error) {
	return c.manager.Issue(email.String())
}

// Validate checks signature and expiry, then the revocation list. The list
// is never consulted for a token that fails the local checks. A lookup
// failure is returned unchanged so callers can treat it as unexpected.
func (c *Codec) Validate(ctx context.Context, token string) (*Claims, error) {
	claims, err := c.manager.Parse(token)
	if err != nil {
		return nil, err
	}

	_, banned, err := c.banned.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}
