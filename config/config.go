// Package config provides configuration management for the Maestral GTK client.
// It handles loading, saving, and managing application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/maestral-gtk/common"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// ConfigName selects which daemon instance to control.
	ConfigName string `yaml:"config_name"`
	// BusAddress overrides the D-Bus session bus address. Empty uses the default bus.
	BusAddress string `yaml:"bus_address,omitempty"`
	// ShowNotifications enables desktop notifications for sync events.
	ShowNotifications bool `yaml:"show_notifications"`
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`
	// ListingWorkers bounds concurrent folder listings in the selective sync dialog.
	ListingWorkers int `yaml:"listing_workers"`
	// StatusInterval is how often the tray polls the daemon.
	StatusInterval time.Duration `yaml:"status_interval"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	path string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ConfigName:        common.DefaultDaemonConfig,
		ShowNotifications: true,
		Theme:             common.ThemeAuto,
		ListingWorkers:    common.DefaultListingWorkers,
		StatusInterval:    common.StatusInterval,
		LogLevel:          "info",
	}
}

// Load loads the configuration from the default config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration stored at configPath.
// A missing file yields (and writes) the defaults.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = configPath
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // reject unknown fields

	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %v", common.ErrConfigLoad, err)
	}

	config.validate()
	config.path = configPath

	return config, nil
}

// validate replaces out-of-range values with defaults.
func (c *Config) validate() {
	switch c.Theme {
	case common.ThemeAuto, common.ThemeLight, common.ThemeDark:
	default:
		c.Theme = common.ThemeAuto
	}
	if c.ConfigName == "" {
		c.ConfigName = common.DefaultDaemonConfig
	}
	if c.ListingWorkers < 1 {
		c.ListingWorkers = common.DefaultListingWorkers
	}
	if c.ListingWorkers > common.MaxListingWorkers {
		c.ListingWorkers = common.MaxListingWorkers
	}
	if c.StatusInterval < 500*time.Millisecond {
		c.StatusInterval = common.StatusInterval
	}
}

// Path returns the file the configuration was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration to its file.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return err
		}
		c.path = configPath
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: error creating config directory: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}

func getConfigPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.ConfigFileName), nil
}
