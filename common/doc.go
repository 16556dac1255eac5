// Package common provides shared constants, types, utilities, and interfaces
// used throughout the Maestral GTK application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts, file names, and UI dimensions
//   - Errors: Sentinel errors for daemon and configuration failures
//   - Interfaces: Abstractions for notifications and logging
//   - Logger: Structured logging with multiple output destinations
//   - Utils: Directory helpers and Dropbox path comparisons
//
// # Usage
//
//	// Use constants
//	timeout := common.DaemonCallTimeout
//
//	// Use logger
//	common.LogInfo("Listing %s", path)
//
//	// Check errors
//	if errors.Is(err, common.ErrBusy) {
//	    // Ask the user to retry
//	}
package common
