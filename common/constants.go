// Package common provides shared constants, types, and utilities
// used across the VPN Access application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.vpnaccess.app"
	// AppName is the display name of the application.
	AppName = "VPN Access"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "vpn-access"
)

// File names used by the application.
const (
	ProfilesFileName = "profiles.yaml"
	SettingsFileName = "settings.yaml"
	LogFileName      = "vpn-access.log"
)

// Location tags with built-in meaning. Any other tag is opaque and only
// surfaced for display.
const (
	// TagPremium marks a server location that requires premium access.
	TagPremium = "#premium"
	// TagPublic on a token marks the holder as a free (non-premium) client.
	TagPublic = "#public"
)

// CountryWildcard matches any country, both in client policies and in
// server location scopes.
const CountryWildcard = "*"

// Nettester defaults.
const (
	// DefaultTestLength is the number of bytes moved per direction.
	DefaultTestLength = 8 * 1024 * 1024
	// DefaultTestConnections is the fan-out for multi-connection tests.
	DefaultTestConnections = 4
	// DefaultTestTimeout bounds a single transfer direction.
	DefaultTestTimeout = 2 * time.Minute
)
