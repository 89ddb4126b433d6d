// Package password implements credential hashing and verification with
// Argon2id defaults for the reference identity provider.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The [Hasher] supports transparent parameter upgrades: if a stored hash was
// produced with weaker parameters, [Hasher.NeedsUpgrade] returns true so the
// provider can re-hash on the next successful authentication.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. The minimum accepted
// plaintext length is the one policy knob it carries, because the provider
// enforces it at the same moment it hashes.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other package of this module.
//   - Log plaintext passwords or hash parameters at runtime.
package password
