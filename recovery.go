package accounts

import "context"

// RequestPasswordReset validates the email shape locally, then asks the
// identity provider to dispatch a reset email. Success means only that the
// email was requested: the provider performs the credential rotation when the
// user follows the emailed link. No local state changes.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (*ResetOutcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	if verr := validateResetRequest(email, e.config.Validation); verr != nil {
		e.metricInc(MetricResetRequestFailure)
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", NormalizeEmail(email), verr, func() map[string]string {
			return map[string]string{
				"field":  verr.Field,
				"reason": string(verr.Reason),
			}
		})
		return nil, verr
	}

	normalized := NormalizeEmail(email)

	if err := e.identity.SendPasswordResetEmail(ctx, normalized); err != nil {
		mapped := asIdentityError(err)
		e.metricInc(MetricResetRequestFailure)
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", normalized, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, "", normalized, nil, nil)

	return &ResetOutcome{Email: normalized, Requested: true}, nil
}
