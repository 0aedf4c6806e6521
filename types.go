package authservice

import "time"

// LoginResult is returned by [Engine.Login]. Exactly one of Token or
// LoginAttemptID is set. The 2FA code itself is never part of the result.
type LoginResult struct {
	Token             string
	TwoFactorRequired bool
	LoginAttemptID    string
}

// TokenClaims is returned by [Engine.VerifyToken] for a valid token.
type TokenClaims struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
