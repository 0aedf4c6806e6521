package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/domain"
)

type Verify2FARequest struct {
	Email          string
	LoginAttemptID string
	Code           string
}

type Verify2FADeps struct {
	Codes      domain.TwoFACodeStore
	IssueToken TokenIssuer
}

type Verify2FAResult struct {
	Failure
	Email domain.Email
	Token string
}

// RunVerify2FA checks a challenge answer. The store compares and removes
// the challenge in one step, so a pair is accepted at most once and a
// stale answer can never remove a newer challenge.
func RunVerify2FA(ctx context.Context, req Verify2FARequest, deps Verify2FADeps) Verify2FAResult {
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return Verify2FAResult{Failure: invalidInput(FailureInvalidCredentials, err)}
	}
	id, err := domain.ParseLoginAttemptID(req.LoginAttemptID)
	if err != nil {
		return Verify2FAResult{Failure: invalidInput(FailureBadInput, err), Email: email}
	}
	code, err := domain.ParseTwoFACode(req.Code)
	if err != nil {
		return Verify2FAResult{Failure: invalidInput(FailureBadInput, err), Email: email}
	}

	if err := deps.Codes.ConsumeCode(ctx, email, id, code); err != nil {
		if errors.Is(err, domain.ErrLoginAttemptIDNotFound) || errors.Is(err, domain.ErrChallengeMismatch) {
			return Verify2FAResult{Failure: fail(FailureIncorrectCredentials, err), Email: email}
		}
		return Verify2FAResult{Failure: fail(FailureUnexpected, err), Email: email}
	}

	token, err := deps.IssueToken(email)
	if err != nil {
		return Verify2FAResult{Failure: fail(FailureUnexpected, err), Email: email}
	}

	return Verify2FAResult{Email: email, Token: token}
}
