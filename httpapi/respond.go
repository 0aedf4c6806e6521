package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	authservice "github.com/MrEthical07/authservice"
)

const maxBodyBytes = 1 << 16

type errorResponse struct {
	Error string `json:"error"`
}

type completable interface {
	complete() bool
}

// decodeJSON reads one JSON object into dst. Syntax errors, wrong field
// types, oversize bodies and missing fields all answer 422.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst completable) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil || !dst.complete() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Unprocessable entity"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	writeJSON(w, status, errorResponse{Error: msg})
}

func errorStatus(err error) (int, string) {
	var input *authservice.InputError
	if errors.As(err, &input) {
		switch {
		case errors.Is(input.Kind, authservice.ErrInvalidCredentials):
			return http.StatusBadRequest, "Invalid credentials: " + input.Detail
		case errors.Is(input.Kind, authservice.ErrBadInput):
			return http.StatusBadRequest, "Bad input: " + input.Detail
		}
	}

	switch {
	case errors.Is(err, authservice.ErrUserAlreadyExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, authservice.ErrIncorrectCredentials):
		return http.StatusUnauthorized, "Access to server limitted or no access granted."
	case errors.Is(err, authservice.ErrMissingToken):
		return http.StatusBadRequest, "Missing token"
	case errors.Is(err, authservice.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	default:
		return http.StatusInternalServerError, "Unexpected error"
	}
}

func isUnexpected(err error) bool {
	status, _ := errorStatus(err)
	return status == http.StatusInternalServerError
}

// requestContext adds the caller's address and user agent for audit
// events.
func requestContext(r *http.Request) context.Context {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ctx := authservice.WithClientIP(r.Context(), host)
	return authservice.WithUserAgent(ctx, r.UserAgent())
}
