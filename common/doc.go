// Package common provides shared constants, types, utilities, and interfaces
// used throughout the VPN Access application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like file names and nettester defaults
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for secret storage and logging
//   - Logger: Leveled logging with optional file output and rotation
//   - Utils: Common utility functions for ids, file operations, and string slices
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/yllada/vpn-access/common"
//
//	// Use logger
//	common.LogInfo("Importing access key for %s", tokenID)
//
//	// Check errors
//	if errors.Is(err, common.ErrProfileNotFound) {
//	    // Handle missing profile
//	}
//
// # Design Principles
//
// This package follows several design principles:
//
//   - Single Responsibility: Each file handles one concern
//   - Interface Segregation: Small, focused interfaces
//   - Dependency Inversion: High-level modules depend on abstractions
package common
