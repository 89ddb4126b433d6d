package accounts

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEngineNotReady is returned when a flow runs before Build wired its
	// collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrNoResendAvailable is returned by LoginOutcome.ResendVerificationEmail
	// when the outcome carries no pending-verification remediation.
	ErrNoResendAvailable = errors.New("no verification resend available")
	// ErrSessionNotAdmitted is returned by Engine.SignOut for a session that
	// was never admitted or is already signed out.
	ErrSessionNotAdmitted = errors.New("session not admitted")
)

// ValidationReason identifies a local, pre-call validation failure. Validation
// failures never reach the remote collaborators.
type ValidationReason string

const (
	// ReasonEmptyField is an enumerated reason carried by ValidationError.
	ReasonEmptyField ValidationReason = "empty-field"
	// ReasonMalformedEmail is an enumerated reason carried by ValidationError.
	ReasonMalformedEmail ValidationReason = "malformed-email"
	// ReasonWeakPassword is an enumerated reason carried by ValidationError.
	ReasonWeakPassword ValidationReason = "weak-password"
	// ReasonPasswordMismatch is an enumerated reason carried by ValidationError.
	ReasonPasswordMismatch ValidationReason = "password-mismatch"
)

// ValidationError reports a field-specific local validation failure. It is
// produced before any remote call is made.
type ValidationError struct {
	Field  string
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Message returns the single user-facing message for this failure.
func (e *ValidationError) Message() string {
	switch e.Reason {
	case ReasonEmptyField:
		return "Please fill in all fields."
	case ReasonMalformedEmail:
		return "Please enter a valid email address."
	case ReasonWeakPassword:
		return "Password must be at least 6 characters long."
	case ReasonPasswordMismatch:
		return "Passwords do not match."
	default:
		return "Invalid input."
	}
}

// IdentityReason is the closed enumeration of identity-provider failures.
// Provider implementations must map their own error codes onto it; nothing
// outside the provider adapter ever sees a raw provider code.
type IdentityReason string

const (
	// IdentityEmailInUse is an enumerated reason carried by IdentityError.
	IdentityEmailInUse IdentityReason = "email-in-use"
	// IdentityWeakCredential is an enumerated reason carried by IdentityError.
	IdentityWeakCredential IdentityReason = "weak-credential"
	// IdentityUserNotFound is an enumerated reason carried by IdentityError.
	IdentityUserNotFound IdentityReason = "user-not-found"
	// IdentityWrongPassword is an enumerated reason carried by IdentityError.
	IdentityWrongPassword IdentityReason = "wrong-password"
	// IdentityInvalidCredential is an enumerated reason carried by IdentityError.
	IdentityInvalidCredential IdentityReason = "invalid-credential"
	// IdentityDisabled is an enumerated reason carried by IdentityError.
	IdentityDisabled IdentityReason = "disabled"
	// IdentityRateLimited is an enumerated reason carried by IdentityError.
	IdentityRateLimited IdentityReason = "rate-limited"
	// IdentityConnectivity is an enumerated reason carried by IdentityError.
	IdentityConnectivity IdentityReason = "connectivity"
	// IdentityMalformedEmail is an enumerated reason carried by IdentityError.
	IdentityMalformedEmail IdentityReason = "malformed-email"
	// IdentityUnknown is the fallback reason for unmapped provider errors.
	IdentityUnknown IdentityReason = "unknown"
)

// IdentityError is a provider-reported failure mapped onto the closed reason
// enumeration. Message is the one user-facing string for the reason; Raw
// preserves the provider's own text for diagnostics and must never be shown
// to an end user on its own.
type IdentityError struct {
	Reason  IdentityReason
	Message string
	Raw     string
}

func (e *IdentityError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("identity provider: %s: %s", e.Reason, e.Raw)
	}
	return fmt.Sprintf("identity provider: %s", e.Reason)
}

// Is reports reason equality so callers can match with errors.Is against a
// bare-reason template value.
func (e *IdentityError) Is(target error) bool {
	var other *IdentityError
	if !errors.As(target, &other) {
		return false
	}
	return e.Reason == other.Reason
}

// NewIdentityError builds an IdentityError for reason, filling the user-facing
// Message from the fixed table. Unknown reasons collapse to IdentityUnknown.
func NewIdentityError(reason IdentityReason, raw string) *IdentityError {
	msg, ok := identityMessages[reason]
	if !ok {
		reason = IdentityUnknown
		msg = identityMessages[IdentityUnknown]
	}
	return &IdentityError{Reason: reason, Message: msg, Raw: raw}
}

var identityMessages = map[IdentityReason]string{
	IdentityEmailInUse:        "This email is already registered. Please login instead.",
	IdentityWeakCredential:    "Password is too weak.",
	IdentityUserNotFound:      "No account found with this email address.",
	IdentityWrongPassword:     "Incorrect password.",
	IdentityInvalidCredential: "Invalid email or password.",
	IdentityDisabled:          "This account has been disabled.",
	IdentityRateLimited:       "Too many attempts. Please try again later.",
	IdentityConnectivity:      "Network error. Please check your internet connection.",
	IdentityMalformedEmail:    "Invalid email address format.",
	IdentityUnknown:           "Something went wrong. Please try again.",
}

// StoreReason is the closed enumeration of document-store failures.
type StoreReason string

const (
	// StoreConnectivity is an enumerated reason carried by StoreError.
	StoreConnectivity StoreReason = "connectivity"
	// StorePermission is an enumerated reason carried by StoreError.
	StorePermission StoreReason = "permission"
	// StoreUnknown is the fallback reason for unmapped store errors.
	StoreUnknown StoreReason = "unknown"
)

// StoreError is a document-store failure mapped onto the closed reason
// enumeration, with the same Message/Raw split as IdentityError.
type StoreError struct {
	Reason  StoreReason
	Message string
	Raw     string
}

func (e *StoreError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("profile store: %s: %s", e.Reason, e.Raw)
	}
	return fmt.Sprintf("profile store: %s", e.Reason)
}

// Is reports reason equality, mirroring IdentityError.Is.
func (e *StoreError) Is(target error) bool {
	var other *StoreError
	if !errors.As(target, &other) {
		return false
	}
	return e.Reason == other.Reason
}

// NewStoreError builds a StoreError for reason with the fixed user-facing
// message.
func NewStoreError(reason StoreReason, raw string) *StoreError {
	msg, ok := storeMessages[reason]
	if !ok {
		reason = StoreUnknown
		msg = storeMessages[StoreUnknown]
	}
	return &StoreError{Reason: reason, Message: msg, Raw: raw}
}

var storeMessages = map[StoreReason]string{
	StoreConnectivity: "Network error. Please check your internet connection.",
	StorePermission:   "You do not have permission to perform this action.",
	StoreUnknown:      "Something went wrong. Please try again.",
}

// asIdentityError maps an arbitrary provider error onto the closed taxonomy.
// Already-typed errors pass through untouched; context cancellation passes
// through unmapped; anything else falls back to IdentityUnknown with the raw
// text preserved.
func asIdentityError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var ie *IdentityError
	if errors.As(err, &ie) {
		if _, ok := identityMessages[ie.Reason]; ok && ie.Message != "" {
			return ie
		}
		return NewIdentityError(ie.Reason, ie.Raw)
	}
	return NewIdentityError(IdentityUnknown, err.Error())
}

// asStoreError maps an arbitrary store error onto the closed taxonomy, with
// the same pass-through rules as asIdentityError.
func asStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		if _, ok := storeMessages[se.Reason]; ok && se.Message != "" {
			return se
		}
		return NewStoreError(se.Reason, se.Raw)
	}
	return NewStoreError(StoreUnknown, err.Error())
}
