// Package common provides shared constants, types, and utilities
// used across the Maestral GTK application.
package common

// SyncState is the coarse state reported by the daemon.
type SyncState int

const (
	StateDisconnected SyncState = iota
	StateIdle
	StateSyncing
	StatePaused
	StateError
)

// String returns a human-readable state string.
func (s SyncState) String() string {
	switch s {
	case StateDisconnected:
		return "Connecting..."
	case StateIdle:
		return "Up to date"
	case StateSyncing:
		return "Syncing..."
	case StatePaused:
		return "Syncing paused"
	case StateError:
		return "Sync error"
	default:
		return "Unknown"
	}
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string) error
}

// Logger defines the interface for structured logging.
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
