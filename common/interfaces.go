// Package common provides shared constants, types, and utilities
// used across the VPN Access application.
package common

// SecretStore defines the interface for token secret storage.
// Implementations may use the system keyring, encrypted files, etc.
// The profile store treats it as optional: a nil SecretStore simply keeps
// secrets inside the profile file.
type SecretStore interface {
	// Store saves the secret for a token.
	Store(tokenID string, secret []byte) error
	// Get retrieves the secret for a token.
	Get(tokenID string) ([]byte, error)
	// Delete removes the secret for a token.
	Delete(tokenID string) error
}

// Logger defines the interface for leveled logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}
