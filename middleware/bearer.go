package middleware

import "net/http"

func RequireBearer(verifier TokenVerifier) func(http.Handler) http.Handler {
	return guard(verifier, fromBearer)
}
