package store

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"github.com/MrEthical07/authservice/domain"
)

// Validate completes a ValidateUser call once a backend has looked up the
// record. lookupErr is the lookup result: domain.ErrUserNotFound spends one
// dummy verification before being returned, any other error is returned
// as is. A malformed stored hash is reported as an error, never as
// domain.ErrInvalidCredentials.
func Validate(
	ctx context.Context,
	hasher domain.PasswordHasher,
	user domain.StoredUser,
	lookupErr error,
	password domain.Password,
) error {
	if lookupErr != nil {
		if errors.Is(lookupErr, domain.ErrUserNotFound) {
			hasher.VerifyMissing(ctx, password.Expose())
		}
		return lookupErr
	}

	ok, err := hasher.Verify(ctx, password.Expose(), user.PasswordHash)
	if err != nil {
		return oops.Code("USER_STORE_VERIFY_FAILED").
			With("operation", "verify password").
			With("email", user.Email.String()).
			Wrap(err)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}
	return nil
}
