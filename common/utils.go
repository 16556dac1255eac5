// Package common provides shared constants, types, and utilities
// used across the Maestral GTK application.
package common

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GetConfigDir returns the path to the application configuration directory.
// It creates the directory if it doesn't exist.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError(err, "failed to get home directory")
	}

	configDir := filepath.Join(homeDir, ".config", ConfigDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", WrapError(err, "failed to create config directory")
	}

	return configDir, nil
}

// GetDataDir returns the path to the application data directory.
func GetDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError(err, "failed to get home directory")
	}

	dataDir := filepath.Join(homeDir, ".local", "share", ConfigDirName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", WrapError(err, "failed to create data directory")
	}

	return dataDir, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsChild reports whether path lies strictly below parent.
// Both arguments are Dropbox paths, compared as given.
func IsChild(path, parent string) bool {
	parent = strings.TrimSuffix(parent, "/")
	if parent == "" {
		return path != "/" && strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, parent+"/") && len(path) > len(parent)+1
}

// IsEqualOrChild reports whether path equals parent or lies below it.
func IsEqualOrChild(path, parent string) bool {
	return path == parent || IsChild(path, parent)
}

// SortedKeys returns the members of a string set in ascending order.
func SortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StringSet builds a set from a slice, lowercasing every entry.
func StringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}
