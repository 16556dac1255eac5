// Package common provides shared constants, types, and utilities
// used across the Maestral GTK application.
package common

import "errors"

// Sentinel errors for daemon operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Daemon domain errors.
	ErrNotAFolder = errors.New("path is not a folder")
	ErrNotFound   = errors.New("path not found")
	ErrBusy       = errors.New("daemon is busy")

	// Connection errors.
	ErrNotConnected      = errors.New("daemon is not connected to Dropbox")
	ErrDaemonUnavailable = errors.New("daemon is not reachable")
	ErrTimeout           = errors.New("operation timed out")
	ErrCancelled         = errors.New("operation cancelled")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
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
