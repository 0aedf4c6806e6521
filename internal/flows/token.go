package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/jwt"
)

type LogoutDeps struct {
	Banned        domain.BannedTokenStore
	ValidateToken TokenValidator
}

type LogoutResult struct {
	Failure
	Email domain.Email
}

// RunLogout validates token and adds it to the revocation list. A token
// that is already revoked fails validation, so logout is not repeatable.
func RunLogout(ctx context.Context, token string, deps LogoutDeps) LogoutResult {
	if token == "" {
		return LogoutResult{Failure: fail(FailureMissingToken, nil)}
	}

	verified := RunVerifyToken(ctx, token, VerifyTokenDeps{ValidateToken: deps.ValidateToken})
	if verified.Failed() {
		return LogoutResult{Failure: verified.Failure}
	}

	if err := deps.Banned.AddToken(ctx, verified.Email, token); err != nil {
		return LogoutResult{Failure: fail(FailureUnexpected, err), Email: verified.Email}
	}
	return LogoutResult{Email: verified.Email}
}

type VerifyTokenDeps struct {
	ValidateToken TokenValidator
}

type VerifyTokenResult struct {
	Failure
	Email  domain.Email
	Claims *jwt.Claims
}

// RunVerifyToken reports whether token is valid and not revoked. Every
// token problem is FailureInvalidToken; revocation lookup failures are
// FailureUnexpected.
func RunVerifyToken(ctx context.Context, token string, deps VerifyTokenDeps) VerifyTokenResult {
	claims, err := deps.ValidateToken(ctx, token)
	if err != nil {
		if isTokenError(err) {
			return VerifyTokenResult{Failure: fail(FailureInvalidToken, err)}
		}
		return VerifyTokenResult{Failure: fail(FailureUnexpected, err)}
	}

	email, err := domain.ParseEmail(claims.Subject)
	if err != nil {
		return VerifyTokenResult{Failure: fail(FailureInvalidToken, err)}
	}
	return VerifyTokenResult{Email: email, Claims: claims}
}

func isTokenError(err error) bool {
	return errors.Is(err, jwt.ErrTokenInvalid) ||
		errors.Is(err, jwt.ErrTokenExpired) ||
		errors.Is(err, jwt.ErrTokenRevoked)
}
