package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/domain"
)

// TwoFASubject is the subject line of the challenge email.
const TwoFASubject = "2FA Code"

type LoginRequest struct {
	Email    string
	Password string
}

type LoginDeps struct {
	Users        domain.UserStore
	Codes        domain.TwoFACodeStore
	Mailer       domain.EmailClient
	IssueToken   TokenIssuer
	NewAttemptID func() domain.LoginAttemptID
	NewCode      func() (domain.TwoFACode, error)
}

// LoginResult is either a token or an outstanding challenge.
type LoginResult struct {
	Failure
	Email             domain.Email
	Token             string
	TwoFactorRequired bool
	LoginAttemptID    domain.LoginAttemptID
	// NotifyErr is set when the challenge was stored but the email could
	// not be sent. The login still succeeds with TwoFactorRequired.
	NotifyErr error
}

// RunLogin validates credentials and either issues a token or starts a
// two-factor challenge. Unknown users and wrong passwords both fail with
// FailureIncorrectCredentials.
func RunLogin(ctx context.Context, req LoginRequest, deps LoginDeps) LoginResult {
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return LoginResult{Failure: invalidInput(FailureInvalidCredentials, err)}
	}
	password, err := domain.ParsePassword(req.Password)
	if err != nil {
		return LoginResult{Failure: invalidInput(FailureInvalidCredentials, err), Email: email}
	}

	if err := deps.Users.ValidateUser(ctx, email, password); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			return LoginResult{Failure: fail(FailureIncorrectCredentials, err), Email: email}
		}
		return LoginResult{Failure: fail(FailureUnexpected, err), Email: email}
	}

	user, err := deps.Users.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return LoginResult{Failure: fail(FailureIncorrectCredentials, err), Email: email}
		}
		return LoginResult{Failure: fail(FailureUnexpected, err), Email: email}
	}

	if !user.Requires2FA {
		token, err := deps.IssueToken(user.Email)
		if err != nil {
			return LoginResult{Failure: fail(FailureUnexpected, err), Email: email}
		}
		return LoginResult{Email: user.Email, Token: token}
	}

	return startChallenge(ctx, user.Email, deps)
}

func startChallenge(ctx context.Context, email domain.Email, deps LoginDeps) LoginResult {
	id := deps.NewAttemptID()
	code, err := deps.NewCode()
	if err != nil {
		return LoginResult{Failure: fail(FailureUnexpected, err), Email: email}
	}

	if err := deps.Codes.AddCode(ctx, email, id, code); err != nil {
		return LoginResult{Failure: fail(FailureUnexpected, err), Email: email}
	}

	result := LoginResult{Email: email, TwoFactorRequired: true, LoginAttemptID: id}
	if deps.Mailer != nil {
		result.NotifyErr = deps.Mailer.SendEmail(ctx, email, TwoFASubject, code.String())
	}
	return result
}
