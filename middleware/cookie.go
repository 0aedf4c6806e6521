package middleware

import "net/http"

// RequireCookie ignores Authorization headers. Use it for browser routes
// that rely on the HttpOnly session cookie.
func RequireCookie(verifier TokenVerifier) func(http.Handler) http.Handler {
	return guard(verifier, fromCookie)
}
