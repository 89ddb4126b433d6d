// Package internal holds coordination primitives shared by the root package
// and the reference backends: the opaque mail-token codec used for
// verification and password-reset links.
//
// Nothing here is part of the public API surface.
package internal
