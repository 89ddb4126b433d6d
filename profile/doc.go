// Package profile is a Redis-backed document store satisfying the
// accounts.ProfileStore contract. Documents are JSON-encoded and write-once;
// failures cross the boundary as *accounts.StoreError values.
package profile
