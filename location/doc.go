// Package location turns a token's flat server location list into the
// ordered, selectable scope hierarchy presented to users, and resolves the
// access options of every scope for the current client.
//
// The package is organized around three steps:
//
//   - Parsing: each raw "country[/region] [#tag ...]" entry becomes a typed
//     leaf; malformed entries are skipped with a diagnostic
//   - Hierarchy: leaves are grouped into country blocks with aggregate
//     wildcard scopes, ordered by a fixed, user-visible contract
//   - Resolution: each scope is annotated with its effective tag list and
//     the entitlement options granted by the applicable client policy
//
// All of it is pure computation over explicit inputs: the same token,
// client country, and tier class always produce the same scope list, so
// callers recompute instead of patching.
package location
