package flows

import (
	"context"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/jwt"
)

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Signup      SignupDeps
	Login       LoginDeps
	Verify2FA   Verify2FADeps
	Logout      LogoutDeps
	VerifyToken VerifyTokenDeps
}

// TokenIssuer signs a session token for an email.
type TokenIssuer func(email domain.Email) (string, error)

// TokenValidator checks signature, expiry and revocation.
type TokenValidator func(ctx context.Context, token string) (*jwt.Claims, error)

// FailureKind classifies flow failures for root-level mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureInvalidCredentials is a malformed email or password.
	FailureInvalidCredentials
	// FailureBadInput is a malformed login attempt id or 2FA code.
	FailureBadInput
	FailureAlreadyExists
	// FailureIncorrectCredentials covers unknown users, wrong passwords and
	// mismatched challenges alike.
	FailureIncorrectCredentials
	FailureMissingToken
	FailureInvalidToken
	FailureUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureInvalidCredentials:
		return "invalid_credentials"
	case FailureBadInput:
		return "bad_input"
	case FailureAlreadyExists:
		return "already_exists"
	case FailureIncorrectCredentials:
		return "incorrect_credentials"
	case FailureMissingToken:
		return "missing_token"
	case FailureInvalidToken:
		return "invalid_token"
	case FailureUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Failure describes why a flow stopped. Detail is caller-safe text for
// input failures; Err is the underlying cause and is never shown to callers.
type Failure struct {
	Kind   FailureKind
	Detail string
	Err    error
}

// Failed reports whether the flow stopped early.
func (f Failure) Failed() bool { return f.Kind != FailureNone }

func fail(kind FailureKind, err error) Failure {
	return Failure{Kind: kind, Err: err}
}

func invalidInput(kind FailureKind, err error) Failure {
	return Failure{Kind: kind, Detail: err.Error(), Err: err}
}
