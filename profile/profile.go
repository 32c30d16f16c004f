package profile

import (
	"time"

	"github.com/yllada/vpn-access/token"
)

// Profile is a local record wrapping one imported credential. The
// ProfileID is generated locally on first import and stays stable across
// re-imports of the same token.
type Profile struct {
	// ProfileID is the unique local identifier for the profile.
	ProfileID string `json:"profileId" yaml:"profile_id"`
	// TokenID identifies the underlying credential; ProfileID and TokenID
	// form a stable 1:1 mapping once created.
	TokenID string `json:"tokenId" yaml:"token_id"`
	// Name is a display-name override; empty means use the token name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// IsBuiltIn marks profiles derived from application-supplied
	// credentials rather than user imports.
	IsBuiltIn bool `json:"isBuiltIn" yaml:"is_built_in"`
	// IsFavorite marks the profile as a user favorite.
	IsFavorite bool `json:"isFavorite" yaml:"is_favorite"`
	// CustomData is opaque caller data carried with the profile.
	CustomData string `json:"customData,omitempty" yaml:"custom_data,omitempty"`
	// ImportedAt is when the profile was first created.
	ImportedAt time.Time `json:"importedAt,omitempty" yaml:"imported_at,omitempty"`
	// Token is the stored credential.
	Token *token.Token `json:"token" yaml:"token"`
}

// DisplayName returns the name override if set, else the token name.
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Token != nil {
		return p.Token.Name
	}
	return ""
}

// clone returns a deep copy so callers never share mutable state with the
// store.
func (p *Profile) clone() *Profile {
	c := *p
	if p.Token != nil {
		c.Token = p.Token.Clone()
	}
	return &c
}

// Optional is a patch field that distinguishes "not supplied" from an
// explicit value, including an explicit zero value.
type Optional[T any] struct {
	value T
	valid bool
}

// Set returns an Optional carrying the given value.
func Set[T any](value T) Optional[T] {
	return Optional[T]{value: value, valid: true}
}

// HasValue reports whether the field was supplied.
func (o Optional[T]) HasValue() bool {
	return o.valid
}

// Value returns the supplied value; meaningful only when HasValue is true.
func (o Optional[T]) Value() T {
	return o.value
}

// UpdateParams is a partial patch for a profile. Fields left unset are not
// touched; setting a field to its zero value clears it.
type UpdateParams struct {
	Name       Optional[string]
	IsFavorite Optional[bool]
	CustomData Optional[string]
}
