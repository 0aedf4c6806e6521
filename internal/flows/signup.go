package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/domain"
)

type SignupRequest struct {
	Email       string
	Password    string
	Requires2FA bool
}

type SignupDeps struct {
	Users domain.UserStore
}

type SignupResult struct {
	Failure
	Email domain.Email
}

// RunSignup parses the request and stores the user.
func RunSignup(ctx context.Context, req SignupRequest, deps SignupDeps) SignupResult {
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return SignupResult{Failure: invalidInput(FailureInvalidCredentials, err)}
	}
	password, err := domain.ParsePassword(req.Password)
	if err != nil {
		return SignupResult{Failure: invalidInput(FailureInvalidCredentials, err), Email: email}
	}

	err = deps.Users.AddUser(ctx, domain.User{Email: email, Password: password, Requires2FA: req.Requires2FA})
	switch {
	case err == nil:
		return SignupResult{Email: email}
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return SignupResult{Failure: fail(FailureAlreadyExists, err), Email: email}
	default:
		return SignupResult{Failure: fail(FailureUnexpected, err), Email: email}
	}
}
