package accounts

import (
	"context"
	"errors"
	"time"
)

// Login drives the session gate: non-empty validation, credential check at
// the identity provider, and the verification-flag read that decides
// admission.
//
// A verified account yields an admitted, caller-owned Session and no sign-out
// call. An unverified account is never admitted: the just-created provider
// session is torn down before Login returns, and the outcome carries the
// single remediation ResendVerificationEmail, which the caller may or may not
// invoke — the tear-down does not wait for it.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	started := time.Now()
	defer func() {
		e.metricObserve(MetricLoginLatency, time.Since(started))
	}()

	if verr := validateLogin(email, password); verr != nil {
		e.metricInc(MetricLoginValidationFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", NormalizeEmail(email), verr, func() map[string]string {
			return map[string]string{
				"field":  verr.Field,
				"reason": string(verr.Reason),
			}
		})
		return nil, verr
	}

	normalized := NormalizeEmail(email)

	account, err := e.identity.Authenticate(ctx, normalized, password)
	if err != nil {
		mapped := asIdentityError(err)
		var ierr *IdentityError
		if errors.As(mapped, &ierr) && ierr.Reason == IdentityRateLimited {
			e.metricInc(MetricLoginRateLimited)
		} else {
			e.metricInc(MetricLoginFailure)
		}
		e.emitAudit(ctx, auditEventLoginFailure, false, "", normalized, mapped, nil)
		return nil, mapped
	}

	lc := LifecycleOf(account)
	lc.ObserveVerified(account.EmailVerified)

	if err := lc.Admit(); err != nil {
		// Pending verification: credentials were right, admission is denied.
		outcome := &LoginOutcome{
			Admitted: false,
			Reason:   LoginReasonUnverified,
			resend:   e.resendVerification(account),
		}

		e.forceSignOut(ctx, account)

		e.metricInc(MetricLoginUnverified)
		e.emitAudit(ctx, auditEventLoginUnverified, false, account.ID, normalized, nil, func() map[string]string {
			return map[string]string{"lifecycle": lc.State().String()}
		})
		return outcome, nil
	}

	session := &Session{
		Account:  account,
		IssuedAt: e.now(),
		admitted: true,
	}

	e.metricInc(MetricLoginAdmitted)
	e.emitAudit(ctx, auditEventLoginAdmitted, true, account.ID, normalized, nil, nil)

	return &LoginOutcome{Admitted: true, Session: session}, nil
}

// resendVerification binds the unverified-login remediation to the account
// authenticated in this call. The returned action reports its own outcome,
// independent of the login result.
func (e *Engine) resendVerification(account *Account) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := e.identity.SendVerificationEmail(ctx, account); err != nil {
			mapped := asIdentityError(err)
			e.metricInc(MetricVerificationResendFailure)
			e.emitAudit(ctx, auditEventVerificationResend, false, account.ID, account.Email, mapped, nil)
			return mapped
		}
		e.metricInc(MetricVerificationEmailSent)
		e.emitAudit(ctx, auditEventVerificationResend, true, account.ID, account.Email, nil, nil)
		return nil
	}
}

// SignOut terminates a caller-owned admitted session: the provider session is
// ended and the Session value becomes invalid. It is the
// Verified/SessionActive → Verified/SessionInactive transition.
func (e *Engine) SignOut(ctx context.Context, session *Session) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !session.Valid() {
		return ErrSessionNotAdmitted
	}

	if err := e.identity.SignOut(ctx, session.Account); err != nil {
		mapped := asIdentityError(err)
		e.emitAudit(ctx, auditEventSignOut, false, session.Account.ID, session.Account.Email, mapped, nil)
		return mapped
	}

	session.invalidate()
	e.metricInc(MetricSignOut)
	e.emitAudit(ctx, auditEventSignOut, true, session.Account.ID, session.Account.Email, nil, nil)
	return nil
}
