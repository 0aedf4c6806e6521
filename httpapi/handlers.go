package httpapi

import (
	"net/http"

	authservice "github.com/MrEthical07/authservice"
)

type signupRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Requires2FA *bool   `json:"requires2FA"`
}

func (r *signupRequest) complete() bool {
	return r.Email != nil && r.Password != nil && r.Requires2FA != nil
}

type loginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r *loginRequest) complete() bool {
	return r.Email != nil && r.Password != nil
}

type verify2FARequest struct {
	Email          *string `json:"email"`
	LoginAttemptID *string `json:"loginAttemptId"`
	Code           *string `json:"2FACode"`
}

func (r *verify2FARequest) complete() bool {
	return r.Email != nil && r.LoginAttemptID != nil && r.Code != nil
}

type verifyTokenRequest struct {
	Token *string `json:"token"`
}

func (r *verifyTokenRequest) complete() bool {
	return r.Token != nil
}

type messageResponse struct {
	Message string `json:"message"`
}

type twoFactorResponse struct {
	Message        string `json:"message"`
	LoginAttemptID string `json:"loginAttemptId"`
}

func (a *api) signup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	err := a.engine.Signup(requestContext(r), *body.Email, *body.Password, *body.Requires2FA)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "User created successfully!"})
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	res, err := a.engine.Login(requestContext(r), *body.Email, *body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if res.TwoFactorRequired {
		writeJSON(w, http.StatusPartialContent, twoFactorResponse{
			Message:        "2FA required",
			LoginAttemptID: res.LoginAttemptID,
		})
		return
	}

	a.setSessionCookie(w, r, res.Token)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful"})
}

func (a *api) verify2FA(w http.ResponseWriter, r *http.Request) {
	var body verify2FARequest
	if !decodeJSON(w, r, &body) {
		return
	}

	token, err := a.engine.Verify2FA(requestContext(r), *body.Email, *body.LoginAttemptID, *body.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	a.setSessionCookie(w, r, token)
	w.WriteHeader(http.StatusOK)
}

func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, authservice.ErrMissingToken)
		return
	}

	if err := a.engine.Logout(requestContext(r), cookie.Value); err != nil {
		writeError(w, err)
		return
	}

	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusOK)
}

// verifyToken answers 401 for every token problem, an empty token
// included.
func (a *api) verifyToken(w http.ResponseWriter, r *http.Request) {
	var body verifyTokenRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	if _, err := a.engine.VerifyToken(requestContext(r), *body.Token); err != nil {
		if isUnexpected(err) {
			writeError(w, err)
			return
		}
		writeError(w, authservice.ErrInvalidToken)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *api) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.engine.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
