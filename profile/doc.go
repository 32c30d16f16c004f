// Package profile owns the durable collection of client profiles, one per
// imported access credential.
//
// The package implements the credential lifecycle:
//
//   - Import: an access key becomes a profile; re-importing the same token
//     updates the existing profile in place
//   - Update: partial patches with explicit set/unset field semantics
//   - Remove: user-initiated deletion, refused for built-in and default
//     profiles
//   - Reconciliation: at startup the whole built-in partition is replaced
//     by the application-supplied credential set
//
// The store persists the full profile list to a yaml file on every
// mutation using a write-then-rename discipline, so a persistence failure
// never leaves the in-memory state ahead of disk. Token secrets can
// optionally be diverted to a common.SecretStore (the system keyring) and
// kept out of the profile file.
//
// Entitlement resolution (location scopes and options) is recomputed on
// demand from the stored token and the ambient client country; it is never
// persisted.
package profile
