package internaldefs

import (
	accounts "github.com/wasiakbar8/smartstudy-accounts"
)

// CounterDef binds one engine counter to its stable exported name.
type CounterDef struct {
	ID   accounts.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its stable exported name.
type HistogramDef struct {
	ID   accounts.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter in a fixed order.
var CounterDefs = []CounterDef{
	{ID: accounts.MetricRegistrationSuccess, Name: "smartstudy_accounts_registration_success_total", Help: "Completed registration runs."},
	{ID: accounts.MetricRegistrationValidationFailure, Name: "smartstudy_accounts_registration_validation_failure_total", Help: "Registration requests rejected by local validation."},
	{ID: accounts.MetricRegistrationDuplicate, Name: "smartstudy_accounts_registration_duplicate_total", Help: "Registration attempts rejected for an already registered email."},
	{ID: accounts.MetricRegistrationFailure, Name: "smartstudy_accounts_registration_failure_total", Help: "Registration attempts failed at the identity provider."},
	{ID: accounts.MetricProfileWriteFailure, Name: "smartstudy_accounts_profile_write_failure_total", Help: "Registrations whose profile document write failed."},
	{ID: accounts.MetricDisplayLabelSoftFailure, Name: "smartstudy_accounts_display_label_soft_failure_total", Help: "Best-effort display label updates that failed."},
	{ID: accounts.MetricVerificationEmailSent, Name: "smartstudy_accounts_verification_email_sent_total", Help: "Verification emails dispatched."},
	{ID: accounts.MetricVerificationEmailSoftFailure, Name: "smartstudy_accounts_verification_email_soft_failure_total", Help: "Verification email dispatches that failed without failing registration."},
	{ID: accounts.MetricForcedSignOut, Name: "smartstudy_accounts_forced_sign_out_total", Help: "Mandatory provider sign-outs after registration or unverified login."},
	{ID: accounts.MetricLoginAdmitted, Name: "smartstudy_accounts_login_admitted_total", Help: "Logins admitted with a verified account."},
	{ID: accounts.MetricLoginUnverified, Name: "smartstudy_accounts_login_unverified_total", Help: "Credential-valid logins rejected for a missing verification."},
	{ID: accounts.MetricLoginFailure, Name: "smartstudy_accounts_login_failure_total", Help: "Logins failed at the identity provider."},
	{ID: accounts.MetricLoginRateLimited, Name: "smartstudy_accounts_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: accounts.MetricLoginValidationFailure, Name: "smartstudy_accounts_login_validation_failure_total", Help: "Login requests rejected by local validation."},
	{ID: accounts.MetricVerificationResendFailure, Name: "smartstudy_accounts_verification_resend_failure_total", Help: "Failed verification email resends."},
	{ID: accounts.MetricResetRequest, Name: "smartstudy_accounts_reset_request_total", Help: "Password reset emails requested."},
	{ID: accounts.MetricResetRequestFailure, Name: "smartstudy_accounts_reset_request_failure_total", Help: "Failed password reset requests."},
	{ID: accounts.MetricSignOut, Name: "smartstudy_accounts_sign_out_total", Help: "Caller-initiated sign-outs."},
}

// HistogramDefs enumerates every exported histogram in a fixed order.
var HistogramDefs = []HistogramDef{
	{ID: accounts.MetricLoginLatency, Name: "smartstudy_accounts_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, as rendered by the
// Prometheus exporter.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bound spellings usable inside instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets widens a snapshot bucket slice to the fixed bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
