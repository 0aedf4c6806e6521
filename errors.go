package authservice

import "errors"

var (
	// ErrUserAlreadyExists is returned by Signup when the email is registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is the kind of an InputError for a malformed
	// email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBadInput is the kind of an InputError for a malformed login attempt
	// id or 2FA code.
	ErrBadInput = errors.New("bad input")
	// ErrIncorrectCredentials is returned for unknown users, wrong passwords
	// and failed challenges. The cases are indistinguishable to callers.
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	// ErrMissingToken is returned by Logout for an empty token.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers malformed, expired, tampered and revoked tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnexpected hides every backend failure from callers.
	ErrUnexpected = errors.New("unexpected error")
	// ErrEngineNotReady is returned by every method of a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// InputError is a rejected input with a caller-safe detail. Kind is
// ErrInvalidCredentials or ErrBadInput.
type InputError struct {
	Kind   error
	Detail string
}

func (e *InputError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *InputError) Unwrap() error { return e.Kind }
