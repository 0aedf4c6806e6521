package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	authservice "github.com/MrEthical07/authservice"
)

// CookieName is the session cookie holding the token.
const CookieName = "jwt"

// Engine is the subset of *authservice.Engine the handlers call.
type Engine interface {
	Signup(ctx context.Context, email, password string, requires2FA bool) error
	Login(ctx context.Context, email, password string) (*authservice.LoginResult, error)
	Verify2FA(ctx context.Context, email, loginAttemptID, code string) (string, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) (*authservice.TokenClaims, error)
	TokenTTL() time.Duration
}

// Options configures NewHandler.
type Options struct {
	// AllowedOrigins lists the origins granted credentialed CORS access.
	AllowedOrigins []string
	Logger         *slog.Logger
	// Metrics is served at GET /metrics when non-nil.
	Metrics http.Handler
}

type api struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler returns the routed handler wrapped with request ids,
// tracing, request logging and CORS.
func NewHandler(engine Engine, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &api{engine: engine, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", a.signup)
	mux.HandleFunc("POST /login", a.login)
	mux.HandleFunc("POST /verify-2fa", a.verify2FA)
	mux.HandleFunc("POST /logout", a.logout)
	mux.HandleFunc("POST /verify-token", a.verifyToken)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	var h http.Handler = mux
	h = cors(opts.AllowedOrigins)(h)
	h = logRequests(logger)(h)
	h = trace(h)
	h = requestID(h)
	return h
}

// NewServer wraps h with the server timeouts used by the service.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
