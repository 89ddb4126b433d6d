// Package jwt manages session-token issuance and verification for the
// reference identity service, using configured signing keys and strict
// validation semantics.
package jwt
