package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrEthical07/authservice/internal"
)

const (
	minPasswordChars = 8
	twoFACodeDigits  = 6
)

var (
	ErrInvalidEmail          = errors.New("invalid email")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrInvalidLoginAttemptID = errors.New("invalid login attempt id")
	ErrInvalidTwoFACode      = errors.New("invalid 2FA code")
)

// Email is a non-empty address containing '@'. Equality is byte-exact.
type Email string

// ParseEmail validates raw without normalizing it.
func ParseEmail(raw string) (Email, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: must not be empty", ErrInvalidEmail)
	}
	if !strings.Contains(raw, "@") {
		return "", fmt.Errorf("%w: must contain '@'", ErrInvalidEmail)
	}
	return Email(raw), nil
}

func (e Email) String() string { return string(e) }

// Password is a plaintext password of at least eight characters.
// String redacts the value; Expose returns it for hashing.
type Password string

func ParsePassword(raw string) (Password, error) {
	if utf8.RuneCountInString(raw) < minPasswordChars {
		return "", fmt.Errorf("%w: must be at least %d characters", ErrInvalidPassword, minPasswordChars)
	}
	return Password(raw), nil
}

func (p Password) String() string { return "[REDACTED]" }

func (p Password) Expose() string { return string(p) }

// LoginAttemptID identifies one outstanding two-factor challenge.
type LoginAttemptID string

func ParseLoginAttemptID(raw string) (LoginAttemptID, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("%w: expected a valid UUID", ErrInvalidLoginAttemptID)
	}
	return LoginAttemptID(raw), nil
}

func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID(uuid.NewString())
}

func (id LoginAttemptID) String() string { return string(id) }

// TwoFACode is exactly six ASCII digits.
type TwoFACode string

func ParseTwoFACode(raw string) (TwoFACode, error) {
	if len(raw) != twoFACodeDigits {
		return "", fmt.Errorf("%w: expected a %d digit string", ErrInvalidTwoFACode, twoFACodeDigits)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return "", fmt.Errorf("%w: expected a %d digit string", ErrInvalidTwoFACode, twoFACodeDigits)
		}
	}
	return TwoFACode(raw), nil
}

// NewTwoFACode draws every digit independently from crypto/rand.
func NewTwoFACode() (TwoFACode, error) {
	code, err := internal.NewOTP(twoFACodeDigits)
	if err != nil {
		return "", err
	}
	return TwoFACode(code), nil
}

func (c TwoFACode) String() string { return string(c) }
