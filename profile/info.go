package profile

import (
	"github.com/yllada/vpn-access/location"
)

// Info is the fully resolved, caller-facing view of a profile: identity
// and metadata plus the entitlement-annotated location hierarchy for the
// current client country. It is derived state and never persisted.
type Info struct {
	ProfileID           string          `json:"profileId"`
	TokenID             string          `json:"tokenId"`
	Name                string          `json:"name"`
	SupportID           string          `json:"supportId,omitempty"`
	IsBuiltIn           bool            `json:"isBuiltIn"`
	IsFavorite          bool            `json:"isFavorite"`
	CustomData          string          `json:"customData,omitempty"`
	ServerLocationInfos []location.Info `json:"serverLocationInfos,omitempty"`
}

// Item bundles a profile with its resolved info, the unit returned by the
// store's import and read operations.
type Item struct {
	Profile Profile
	Info    Info
}

// FindLocation returns the scope matching the given location string,
// falling back to the default scope when it no longer exists.
func (i *Item) FindLocation(serverLocation string) *location.Info {
	return location.FindInfo(i.Info.ServerLocationInfos, serverLocation)
}
