// Package common provides shared constants, types, and utilities
// used across the VPN Access application.
package common

import "errors"

// Sentinel errors for profile and token operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Profile store errors.
	ErrProfileNotFound = errors.New("client profile not found")
	ErrTokenNotFound   = errors.New("token not found")
	ErrUnauthorized    = errors.New("operation not permitted on this profile")

	// Credential errors.
	ErrInvalidAccessKey = errors.New("invalid access key")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrSecretStorage    = errors.New("failed to store secret")

	// Persistence errors.
	ErrStorageFailure = errors.New("storage failure")

	// Settings errors.
	ErrSettingsLoad = errors.New("failed to load settings")
	ErrSettingsSave = errors.New("failed to save settings")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
