package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authservice "github.com/MrEthical07/authservice"
)

// DefaultCookieName is the session cookie set by the HTTP API.
const DefaultCookieName = "jwt"

// TokenVerifier is satisfied by *authservice.Engine.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*authservice.TokenClaims, error)
}

type claimsContextKey struct{}

// ClaimsFromContext returns the claims stored by a guard.
func ClaimsFromContext(ctx context.Context) (*authservice.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*authservice.TokenClaims)
	return claims, ok
}

type source uint8

const (
	fromCookie source = 1 << iota
	fromBearer
)

// Guard accepts the session cookie first, then a bearer token.
func Guard(verifier TokenVerifier) func(http.Handler) http.Handler {
	return guard(verifier, fromCookie|fromBearer)
}

func guard(verifier TokenVerifier, sources source) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := tokenFromRequest(r, sources)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, authservice.ErrUnexpected) {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request, sources source) (string, bool) {
	if sources&fromCookie != 0 {
		if c, err := r.Cookie(DefaultCookieName); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	if sources&fromBearer != 0 {
		return bearerToken(r.Header.Get("Authorization"))
	}
	return "", false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
