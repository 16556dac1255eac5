// Package common provides shared constants, types, and utilities
// used across the Maestral GTK application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.maestral.gtk"
	// AppName is the display name of the application.
	AppName = "Maestral"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "maestral-gtk"
	// DefaultDaemonConfig is the config name used by the daemon when none is given.
	DefaultDaemonConfig = "maestral"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	JournalFileName = "selections.db"
	LogFileName     = "maestral-gtk.log"
)

// Default timeouts and intervals.
const (
	// DaemonCallTimeout bounds a single request on the primary daemon connection.
	DaemonCallTimeout = 10 * time.Second
	// StatusInterval is how often the tray polls the daemon status.
	StatusInterval = 2 * time.Second
	// DefaultListingWorkers is the number of concurrent folder listings per session.
	DefaultListingWorkers = 4
	// MaxListingWorkers caps the configurable listing concurrency.
	MaxListingWorkers = 16
)

// UI constants.
const (
	// DialogMargin is the standard margin for dialog content.
	DialogMargin = 24
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
	// TreeIndent is the horizontal indent per tree level, in pixels.
	TreeIndent = 20
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
