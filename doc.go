// Package accounts orchestrates the account lifecycle of a study-portal user:
// registration against a remote identity provider, a companion profile document
// in a document store, verification-gated login, and password-reset issuance.
//
// The package is the public surface. It exposes [Engine], [Builder], [Config],
// the outcome types (RegistrationOutcome, LoginOutcome, ResetOutcome), and the
// closed error taxonomy. All internal coordination — audit dispatch, mail-token
// encoding — lives under internal/ and is never exported. Reference backends
// for the two external collaborators live in the identity and profile
// sub-packages.
//
// # Architecture boundaries
//
// The Engine consumes two collaborator interfaces, [IdentityProvider] and
// [ProfileStore], and owns nothing but the sequencing between them. Credential
// storage, the authoritative verification flag, and email delivery belong to
// the provider; the Engine only observes them.
//
// # What this package must NOT do
//
//   - Hold a process-wide session. An admitted [Session] is returned to the
//     caller and owned by the caller.
//   - Set the verification flag. The flag transitions provider-side and is
//     re-read, never written, by this package.
//   - Surface raw provider error text to end users. Every remote failure is
//     mapped to the closed reason enumeration at the flow boundary.
//
// # Safety contract
//
// No caller ever observes an admitted Session for an unverified account. The
// forced sign-out that enforces this runs to completion on a non-cancellable
// context, in both registration and the unverified login path.
package accounts
