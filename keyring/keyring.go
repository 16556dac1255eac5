// Package keyring inspects the account credentials the Maestral daemon keeps
// in the system keyring.
//
// The daemon stores one OAuth token per linked account under the "Maestral"
// service. The client never reads the token itself; it only checks that one
// exists. Unlinking is left to the daemon, which owns the token.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName is the service the daemon stores tokens under.
	ServiceName = "Maestral"
)

// Common errors returned by keyring operations.
var (
	ErrUnavailable = errors.New("keyring service unavailable")
	ErrNoAccount   = errors.New("account ID cannot be empty")
)

// HasCredentials reports whether a token is stored for accountID.
func HasCredentials(accountID string) (bool, error) {
	if accountID == "" {
		return false, ErrNoAccount
	}

	_, err := keyring.Get(ServiceName, accountID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, keyring.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// Describe returns a short human-readable credential state for accountID.
func Describe(accountID string) string {
	if accountID == "" {
		return "not linked"
	}
	ok, err := HasCredentials(accountID)
	switch {
	case err != nil:
		return "keyring unavailable"
	case ok:
		return "stored in keyring"
	default:
		return "missing"
	}
}
