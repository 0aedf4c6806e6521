package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/authservice/internal/logging"
)

const (
	auditEventSignupSuccess      = "signup_success"
	auditEventSignupFailure      = "signup_failure"
	auditEventSignupDuplicate    = "signup_duplicate"
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventTwoFARequired      = "twofa_required"
	auditEventTwoFASuccess       = "twofa_success"
	auditEventTwoFAFailure       = "twofa_failure"
	auditEventTwoFANotifyFailure = "twofa_notify_failure"
	auditEventLogoutSuccess      = "logout_success"
	auditEventLogoutFailure      = "logout_failure"
	auditEventTokenVerifyFailure = "token_verify_failure"
)

// AuditErrorCode is the stable error label written into AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrInvalidCredentials   AuditErrorCode = "invalid_credentials"
	auditErrBadInput             AuditErrorCode = "bad_input"
	auditErrDuplicate            AuditErrorCode = "duplicate"
	auditErrIncorrectCredentials AuditErrorCode = "incorrect_credentials"
	auditErrMissingToken         AuditErrorCode = "missing_token"
	auditErrInvalidToken         AuditErrorCode = "invalid_token"
	auditErrNotifyFailed         AuditErrorCode = "notify_failed"
	auditErrInternal             AuditErrorCode = "internal_error"
)

// errNotifyFailed labels a challenge email that could not be delivered.
var errNotifyFailed = errors.New("challenge notification failed")

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		RequestID: logging.RequestID(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrBadInput):
		return auditErrBadInput
	case errors.Is(err, ErrUserAlreadyExists):
		return auditErrDuplicate
	case errors.Is(err, ErrIncorrectCredentials):
		return auditErrIncorrectCredentials
	case errors.Is(err, ErrMissingToken):
		return auditErrMissingToken
	case errors.Is(err, ErrInvalidToken):
		return auditErrInvalidToken
	case errors.Is(err, errNotifyFailed):
		return auditErrNotifyFailed
	default:
		return auditErrInternal
	}
}
