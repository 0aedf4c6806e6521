package authservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/internal/audit"
	"github.com/MrEthical07/authservice/internal/errutil"
	"github.com/MrEthical07/authservice/internal/flows"
	"github.com/MrEthical07/authservice/jwt"
	"github.com/MrEthical07/authservice/password"
)

const tracerName = "github.com/MrEthical07/authservice"

// Engine runs the credential and session lifecycle. Build one with [New]
// and [Builder.Build]; it is immutable afterwards and safe for concurrent use.
type Engine struct {
	config    Config
	logger    *slog.Logger
	codec     *jwt.Codec
	flows     flows.Deps
	audit     *audit.Dispatcher
	metrics   *Metrics
	ownedPool *password.Pool
}

// Close flushes buffered audit events and stops the hashing pool the
// Builder created, if any. Engine methods must not be called afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
	if e.ownedPool != nil {
		e.ownedPool.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the current counters and histograms.
// A nil Engine returns empty maps.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// TokenTTL is the lifetime of issued session tokens.
func (e *Engine) TokenTTL() time.Duration {
	if e == nil {
		return 0
	}
	return e.config.Token.TTL
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Signup fails with an [InputError] of kind ErrInvalidCredentials for a
// malformed email or password, ErrUserAlreadyExists for a registered
// email, and ErrUnexpected for backend failures.
func (e *Engine) Signup(ctx context.Context, email, password string, requires2FA bool) error {
	if e == nil {
		return ErrEngineNotReady
	}
	ctx, span := e.startSpan(ctx, "Signup")
	defer span.End()

	res := flows.RunSignup(ctx, flows.SignupRequest{
		Email:       email,
		Password:    password,
		Requires2FA: requires2FA,
	}, e.flows.Signup)

	if !res.Failed() {
		e.metricInc(MetricSignupSuccess)
		e.emitAudit(ctx, auditEventSignupSuccess, true, res.Email.String(), nil, func() map[string]string {
			return map[string]string{"requires_2fa": boolString(requires2FA)}
		})
		return nil
	}

	err := e.failureError(ctx, span, "signup failed", res.Failure)
	if res.Kind == flows.FailureAlreadyExists {
		e.metricInc(MetricSignupDuplicate)
		e.emitAudit(ctx, auditEventSignupDuplicate, false, res.Email.String(), err, nil)
	} else {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, res.Email.String(), err, nil)
	}
	return err
}

// Login checks a password and, for 2FA accounts, opens a challenge.
// Unknown emails and wrong passwords both fail with
// ErrIncorrectCredentials after the same hashing cost. For accounts that
// require a second factor the result carries a LoginAttemptID and the
// code is emailed; a delivery failure is logged and audited but does not
// fail the login.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	ctx, span := e.startSpan(ctx, "Login")
	defer span.End()

	res := flows.RunLogin(ctx, flows.LoginRequest{Email: email, Password: password}, e.flows.Login)
	userID := res.Email.String()

	if res.Failed() {
		err := e.failureError(ctx, span, "login failed", res.Failure)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, userID, err, e.userAgentMetadata(ctx))
		return nil, err
	}

	if res.TwoFactorRequired {
		e.metricInc(MetricTwoFARequired)
		e.emitAudit(ctx, auditEventTwoFARequired, true, userID, nil, e.userAgentMetadata(ctx))
		if res.NotifyErr != nil {
			errutil.LogError(ctx, e.logger, "2FA notification failed", res.NotifyErr)
			span.RecordError(res.NotifyErr)
			e.emitAudit(ctx, auditEventTwoFANotifyFailure, false, userID, errNotifyFailed, nil)
		}
		span.SetAttributes(attribute.Bool("auth.two_factor_required", true))
		return &LoginResult{
			TwoFactorRequired: true,
			LoginAttemptID:    res.LoginAttemptID.String(),
		}, nil
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, userID, nil, e.userAgentMetadata(ctx))
	return &LoginResult{Token: res.Token}, nil
}

// Verify2FA answers a Login challenge.
// A malformed email fails with an InputError of kind
// ErrInvalidCredentials; a malformed attempt id or code with kind
// ErrBadInput. A missing or mismatched challenge fails with
// ErrIncorrectCredentials and leaves the challenge in place. On success
// the challenge is consumed and a session token returned.
func (e *Engine) Verify2FA(ctx context.Context, email, loginAttemptID, code string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	ctx, span := e.startSpan(ctx, "Verify2FA")
	defer span.End()

	res := flows.RunVerify2FA(ctx, flows.Verify2FARequest{
		Email:          email,
		LoginAttemptID: loginAttemptID,
		Code:           code,
	}, e.flows.Verify2FA)

	if res.Failed() {
		err := e.failureError(ctx, span, "2FA verification failed", res.Failure)
		e.metricInc(MetricTwoFAFailure)
		e.emitAudit(ctx, auditEventTwoFAFailure, false, res.Email.String(), err, nil)
		return "", err
	}

	e.metricInc(MetricTwoFASuccess)
	e.emitAudit(ctx, auditEventTwoFASuccess, true, res.Email.String(), nil, nil)
	return res.Token, nil
}

// Logout revokes a valid token. An empty token fails with
// ErrMissingToken; an invalid, expired or already revoked token with
// ErrInvalidToken.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	ctx, span := e.startSpan(ctx, "Logout")
	defer span.End()

	res := flows.RunLogout(ctx, token, e.flows.Logout)
	if res.Failed() {
		if errors.Is(res.Err, jwt.ErrTokenRevoked) {
			e.metricInc(MetricTokenRevoked)
		}
		err := e.failureError(ctx, span, "logout failed", res.Failure)
		e.metricInc(MetricLogoutFailure)
		e.emitAudit(ctx, auditEventLogoutFailure, false, res.Email.String(), err, nil)
		return err
	}

	e.metricInc(MetricLogoutSuccess)
	e.emitAudit(ctx, auditEventLogoutSuccess, true, res.Email.String(), nil, nil)
	return nil
}

// VerifyToken returns the claims of a valid, unrevoked token.
// Every token problem, revocation included, fails with ErrInvalidToken.
// A revocation lookup failure is ErrUnexpected.
func (e *Engine) VerifyToken(ctx context.Context, token string) (*TokenClaims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	ctx, span := e.startSpan(ctx, "VerifyToken")
	defer span.End()

	start := time.Now()
	res := flows.RunVerifyToken(ctx, token, e.flows.VerifyToken)
	e.metrics.Observe(MetricVerifyTokenLatency, time.Since(start))

	if res.Failed() {
		if errors.Is(res.Err, jwt.ErrTokenRevoked) {
			e.metricInc(MetricTokenRevoked)
		}
		err := e.failureError(ctx, span, "token verification failed", res.Failure)
		e.metricInc(MetricTokenVerifyFailure)
		e.emitAudit(ctx, auditEventTokenVerifyFailure, false, "", err, nil)
		return nil, err
	}

	e.metricInc(MetricTokenVerifySuccess)

	claims := &TokenClaims{Email: res.Email.String()}
	if res.Claims.IssuedAt != nil {
		claims.IssuedAt = res.Claims.IssuedAt.Time
	}
	if res.Claims.ExpiresAt != nil {
		claims.ExpiresAt = res.Claims.ExpiresAt.Time
	}
	return claims, nil
}

// failureError maps a flow failure to the caller-facing error. Unexpected
// failures are logged with their cause, which is never returned.
func (e *Engine) failureError(ctx context.Context, span trace.Span, msg string, f flows.Failure) error {
	var err error
	switch f.Kind {
	case flows.FailureInvalidCredentials:
		err = &InputError{Kind: ErrInvalidCredentials, Detail: f.Detail}
	case flows.FailureBadInput:
		err = &InputError{Kind: ErrBadInput, Detail: f.Detail}
	case flows.FailureAlreadyExists:
		err = ErrUserAlreadyExists
	case flows.FailureIncorrectCredentials:
		err = ErrIncorrectCredentials
	case flows.FailureMissingToken:
		err = ErrMissingToken
	case flows.FailureInvalidToken:
		err = ErrInvalidToken
	default:
		errutil.LogError(ctx, e.logger, msg, f.Err)
		if f.Err != nil {
			span.RecordError(f.Err)
		}
		err = ErrUnexpected
	}

	span.SetStatus(codes.Error, f.Kind.String())
	return err
}

func (e *Engine) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return otel.Tracer(tracerName).Start(ctx, "authservice."+op,
		trace.WithAttributes(attribute.String("auth.operation", op)),
	)
}

func (e *Engine) userAgentMetadata(ctx context.Context) func() map[string]string {
	ua := userAgentFromContext(ctx)
	if ua == "" {
		return nil
	}
	return func() map[string]string {
		return map[string]string{"user_agent": ua}
	}
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// timeoutMailer bounds each delivery by timeout.
type timeoutMailer struct {
	next    domain.EmailClient
	timeout time.Duration
}

func (m *timeoutMailer) SendEmail(ctx context.Context, recipient domain.Email, subject, content string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.SendEmail(ctx, recipient, subject, content)
}
