package accounts

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/wasiakbar8/smartstudy-accounts/internal/audit"
)

const (
	auditEventRegistrationSuccess      = "registration_success"
	auditEventRegistrationFailure      = "registration_failure"
	auditEventRegistrationDuplicate    = "registration_duplicate"
	auditEventProfileWriteFailure      = "profile_write_failure"
	auditEventDisplayLabelFailure      = "display_label_failure"
	auditEventVerificationEmailSent    = "verification_email_sent"
	auditEventVerificationEmailFailure = "verification_email_failure"
	auditEventForcedSignOut            = "forced_sign_out"
	auditEventForcedSignOutFailure     = "forced_sign_out_failure"
	auditEventLoginAdmitted            = "login_admitted"
	auditEventLoginUnverified          = "login_unverified"
	auditEventLoginFailure             = "login_failure"
	auditEventVerificationResend       = "verification_resend"
	auditEventPasswordResetRequest     = "password_reset_request"
	auditEventSignOut                  = "sign_out"
)

// AuditErrorCode is the stable machine-readable code recorded on failed audit
// events. Raw error text never enters the audit stream.
type AuditErrorCode string

const (
	auditErrValidation     AuditErrorCode = "validation"
	auditErrEmailInUse     AuditErrorCode = "email_in_use"
	auditErrWeakCredential AuditErrorCode = "weak_credential"
	auditErrUserNotFound   AuditErrorCode = "user_not_found"
	auditErrWrongPassword  AuditErrorCode = "wrong_password"
	auditErrInvalidCred    AuditErrorCode = "invalid_credential"
	auditErrDisabled       AuditErrorCode = "account_disabled"
	auditErrRateLimited    AuditErrorCode = "rate_limited"
	auditErrConnectivity   AuditErrorCode = "connectivity"
	auditErrMalformedEmail AuditErrorCode = "malformed_email"
	auditErrStore          AuditErrorCode = "store_failure"
	auditErrCanceled       AuditErrorCode = "canceled"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	email string,
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

	event := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
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

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return auditErrCanceled
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return auditErrValidation
	}

	var serr *StoreError
	if errors.As(err, &serr) {
		return auditErrStore
	}

	var ierr *IdentityError
	if errors.As(err, &ierr) {
		switch ierr.Reason {
		case IdentityEmailInUse:
			return auditErrEmailInUse
		case IdentityWeakCredential:
			return auditErrWeakCredential
		case IdentityUserNotFound:
			return auditErrUserNotFound
		case IdentityWrongPassword:
			return auditErrWrongPassword
		case IdentityInvalidCredential:
			return auditErrInvalidCred
		case IdentityDisabled:
			return auditErrDisabled
		case IdentityRateLimited:
			return auditErrRateLimited
		case IdentityConnectivity:
			return auditErrConnectivity
		case IdentityMalformedEmail:
			return auditErrMalformedEmail
		default:
			return auditErrInternal
		}
	}

	return auditErrInternal
}
