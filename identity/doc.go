// Package identity is a Redis-backed reference implementation of the
// accounts.IdentityProvider contract. It owns the account directory (argon2id
// credentials, the authoritative emailVerified flag), issues signed session
// tokens, and dispatches verification and password-reset mail through a
// pluggable Mailer.
//
// All failures cross the package boundary as *accounts.IdentityError values
// carrying the closed reason enumeration the engine maps on.
package identity
