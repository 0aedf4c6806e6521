package domain

import (
	"context"
	"errors"
)

var (
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrLoginAttemptIDNotFound = errors.New("login attempt id not found")
	ErrChallengeMismatch      = errors.New("2fa challenge mismatch")
)

// User is a signup request that has passed parsing. Password is still
// plaintext; stores hash it before keeping anything.
type User struct {
	Email       Email
	Password    Password
	Requires2FA bool
}

// StoredUser is what a UserStore holds and returns.
type StoredUser struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
}

// UserStore owns user records keyed by Email.
//
// AddUser fails with ErrUserAlreadyExists when the email is present.
// GetUser fails with ErrUserNotFound. ValidateUser fails with
// ErrUserNotFound or an error wrapping ErrInvalidCredentials; any other
// error is a backend failure.
type UserStore interface {
	AddUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, email Email) (StoredUser, error)
	ValidateUser(ctx context.Context, email Email, password Password) error
}

// BannedTokenStore is an append-only set of revoked tokens.
type BannedTokenStore interface {
	AddToken(ctx context.Context, email Email, token string) error
	// VerifyToken reports the owning email and true when token is banned.
	VerifyToken(ctx context.Context, token string) (Email, bool, error)
}

// TwoFACodeStore keeps at most one challenge per email. AddCode replaces
// any previous challenge.
//
// ConsumeCode compares and removes in one step: it fails with
// ErrLoginAttemptIDNotFound when no challenge exists and with
// ErrChallengeMismatch, leaving the challenge in place, when id or code
// differ. Of two concurrent calls with the correct pair exactly one
// succeeds.
type TwoFACodeStore interface {
	AddCode(ctx context.Context, email Email, id LoginAttemptID, code TwoFACode) error
	RemoveCode(ctx context.Context, email Email) error
	GetCode(ctx context.Context, email Email) (LoginAttemptID, TwoFACode, error)
	ConsumeCode(ctx context.Context, email Email, id LoginAttemptID, code TwoFACode) error
}

// PasswordHasher hashes and verifies plaintext passwords. Verify returns an
// error, not false, when encoded is malformed.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, encoded string) (bool, error)
	// VerifyMissing spends the cost of one verification for lookups that
	// found no user.
	VerifyMissing(ctx context.Context, plaintext string)
}

// EmailClient delivers a message to recipient.
type EmailClient interface {
	SendEmail(ctx context.Context, recipient Email, subject, content string) error
}
