package accounts

import (
	"context"
	"errors"
)

// Register drives the full registration sequence: local validation, account
// creation at the identity provider, the best-effort display-label update,
// the profile document write, the verification email dispatch, and the
// unconditional forced sign-out.
//
// Failure semantics follow the step order. Validation violations return
// *ValidationError before any remote call. An account-creation failure is
// terminal and needs no compensation. A profile-write failure fails the
// registration but does NOT roll back the account — the inconsistency is
// accepted and auditable, not hidden. Label-update and email-dispatch
// failures are soft: they are audited and reported on the outcome without
// failing the operation. The forced sign-out runs on both the success and the
// profile-failure path, so no registration ever leaves a provider session
// behind.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegistrationOutcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	if verr := validateRegistration(req, e.config.Validation); verr != nil {
		e.metricInc(MetricRegistrationValidationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", NormalizeEmail(req.Email), verr, func() map[string]string {
			return map[string]string{
				"field":  verr.Field,
				"reason": string(verr.Reason),
			}
		})
		return nil, verr
	}

	email := NormalizeEmail(req.Email)

	account, err := e.identity.CreateAccount(ctx, email, req.Password)
	if err != nil {
		mapped := asIdentityError(err)
		var ierr *IdentityError
		if errors.As(mapped, &ierr) && ierr.Reason == IdentityEmailInUse {
			e.metricInc(MetricRegistrationDuplicate)
			e.emitAudit(ctx, auditEventRegistrationDuplicate, false, "", email, mapped, nil)
		} else {
			e.metricInc(MetricRegistrationFailure)
			e.emitAudit(ctx, auditEventRegistrationFailure, false, "", email, mapped, func() map[string]string {
				return map[string]string{"step": "create_account"}
			})
		}
		return nil, mapped
	}

	lc := Lifecycle{}
	if err := lc.RecordRegistration(); err != nil {
		// Unreachable for a zero-value machine; kept so the transition stays
		// checked if the construction above ever changes.
		return nil, err
	}

	labelSet := true
	if err := e.identity.UpdateDisplayLabel(ctx, account, req.RegistrationNumber); err != nil {
		labelSet = false
		e.metricInc(MetricDisplayLabelSoftFailure)
		e.emitAudit(ctx, auditEventDisplayLabelFailure, false, account.ID, email, asIdentityError(err), nil)
	} else {
		account.DisplayLabel = req.RegistrationNumber
	}

	profile := Profile{
		AccountID:          account.ID,
		Email:              email,
		RegistrationNumber: req.RegistrationNumber,
		CreatedAt:          e.now().UTC(),
		EmailVerified:      false,
	}
	if err := e.profiles.Put(ctx, e.config.Registration.ProfileCollection, account.ID, profile); err != nil {
		mapped := asStoreError(err)
		e.metricInc(MetricProfileWriteFailure)
		e.emitAudit(ctx, auditEventProfileWriteFailure, false, account.ID, email, mapped, func() map[string]string {
			// The account already exists and is not rolled back.
			return map[string]string{"account_retained": "true"}
		})
		e.forceSignOut(ctx, account)
		return nil, mapped
	}

	emailSent := true
	if err := e.identity.SendVerificationEmail(ctx, account); err != nil {
		emailSent = false
		e.metricInc(MetricVerificationEmailSoftFailure)
		e.emitAudit(ctx, auditEventVerificationEmailFailure, false, account.ID, email, asIdentityError(err), nil)
	} else {
		e.metricInc(MetricVerificationEmailSent)
		e.emitAudit(ctx, auditEventVerificationEmailSent, true, account.ID, email, nil, nil)
	}

	// An unverified account must never remain authenticated after
	// registration, whether or not the email went out.
	e.forceSignOut(ctx, account)
	lc.RecordSignOut()

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventRegistrationSuccess, true, account.ID, email, nil, func() map[string]string {
		return map[string]string{
			"verification_email_sent": boolString(emailSent),
			"lifecycle":               lc.State().String(),
		}
	})

	return &RegistrationOutcome{
		AccountID:             account.ID,
		Email:                 email,
		VerificationEmailSent: emailSent,
		DisplayLabelSet:       labelSet,
	}, nil
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
