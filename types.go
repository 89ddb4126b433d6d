package accounts

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/wasiakbar8/smartstudy-accounts/internal/audit"
)

// Account is the identity-provider-owned record. The verification flag is
// provider-authoritative: this package re-reads it after provider actions and
// never writes it.
type Account struct {
	// ID is the opaque provider-assigned identifier.
	ID string
	// Email is the unique, case-normalized address the account was created with.
	Email string
	// DisplayLabel is the client-settable label; the registration flow stores
	// the institutional registration number here.
	DisplayLabel string
	// EmailVerified mirrors the provider's verification flag as of the last
	// read. It may be stale until the next provider round-trip.
	EmailVerified bool
}

// Profile is the document-store-owned record, one-to-one with Account by
// identifier. It is created exactly once, inside the registration run, and is
// never updated or deleted by this package. EmailVerified is a write-once
// denormalized copy (always false at creation) and is allowed to lag the
// Account's authoritative flag.
type Profile struct {
	AccountID          string    `json:"uid"`
	Email              string    `json:"email"`
	RegistrationNumber string    `json:"registrationNo"`
	CreatedAt          time.Time `json:"createdAt"`
	EmailVerified      bool      `json:"emailVerified"`
}

// Session is an ephemeral, process-local admission record. It is returned to
// the caller by Login and owned by the caller; there is no process-wide
// current session. A Session is only ever constructed admitted, for a
// verified account, and becomes invalid on SignOut.
type Session struct {
	Account  *Account
	IssuedAt time.Time

	admitted bool
}

// Valid reports whether the session is currently admitted.
func (s *Session) Valid() bool {
	return s != nil && s.admitted && s.Account != nil && s.Account.EmailVerified
}

func (s *Session) invalidate() {
	if s != nil {
		s.admitted = false
	}
}

// IdentityProvider is the consumed contract of the remote identity service.
// Implementations must report failures as *IdentityError values carrying the
// closed reason enumeration; any other error is collapsed to IdentityUnknown
// at the flow boundary. The identity sub-package provides a Redis-backed
// reference implementation.
type IdentityProvider interface {
	// CreateAccount registers email with the given credential and returns the
	// new account, signed in provider-side, with EmailVerified=false.
	CreateAccount(ctx context.Context, email, password string) (*Account, error)
	// Authenticate checks the credential and returns the account with a
	// freshly read verification flag.
	Authenticate(ctx context.Context, email, password string) (*Account, error)
	// SendVerificationEmail dispatches (or re-dispatches) the verification
	// message for the account.
	SendVerificationEmail(ctx context.Context, account *Account) error
	// SendPasswordResetEmail dispatches the reset message. The provider, not
	// this package, performs the credential rotation behind the emailed link.
	SendPasswordResetEmail(ctx context.Context, email string) error
	// UpdateDisplayLabel sets the account's display label.
	UpdateDisplayLabel(ctx context.Context, account *Account, label string) error
	// SignOut terminates the provider-side session for the account.
	SignOut(ctx context.Context, account *Account) error
}

// ProfileStore is the consumed contract of the document store. Failures are
// reported as *StoreError values; anything else collapses to StoreUnknown.
type ProfileStore interface {
	Put(ctx context.Context, collection, key string, p Profile) error
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Email              string
	RegistrationNumber string
	Password           string
	ConfirmPassword    string
}

// RegistrationOutcome is returned by [Engine.Register] on success. The two
// soft-failure flags report secondary steps that failed without failing the
// registration.
type RegistrationOutcome struct {
	AccountID string
	Email     string
	// VerificationEmailSent is false when the dispatch failed; the account and
	// profile still exist and the user can request a resend at login.
	VerificationEmailSent bool
	// DisplayLabelSet is false when the best-effort label update failed.
	DisplayLabelSet bool
}

// LoginReasonUnverified is the LoginOutcome.Reason for a credential-valid
// login rejected because the account is not yet verified.
const LoginReasonUnverified = "unverified"

// LoginOutcome is returned by [Engine.Login]. When Admitted is true, Session
// is the caller-owned admitted session and Reason is empty. When Admitted is
// false with Reason "unverified", the provider accepted the credentials but
// the account awaits verification; the provider session has already been torn
// down, and ResendVerificationEmail is the single offered remediation.
type LoginOutcome struct {
	Admitted bool
	Reason   string
	Session  *Session

	resend func(ctx context.Context) error
}

// ResendVerificationEmail re-dispatches the verification message for the
// account behind an unverified login outcome. Its result is independent of
// the login outcome and does not alter it. For admitted outcomes it returns
// ErrNoResendAvailable.
func (o *LoginOutcome) ResendVerificationEmail(ctx context.Context) error {
	if o == nil || o.resend == nil {
		return ErrNoResendAvailable
	}
	return o.resend(ctx)
}

// ResetOutcome is returned by [Engine.RequestPasswordReset]. It reports only
// that the reset email was requested; the rotation itself happens provider
// side when the user follows the link.
type ResetOutcome struct {
	Email     string
	Requested bool
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
