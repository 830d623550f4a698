package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Defaults for the CLI.
const (
	DefaultListenAddr = "127.0.0.1:8787"
	DefaultHubURL     = "ws://" + DefaultListenAddr
	DefaultLocation   = "file:///"
	DefaultLogLevel   = "info"
	DefaultTimeout    = 5 * time.Second
)

// Supported store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds CLI configuration for xstore.
type Config struct {
	// Home holds the config file and relative store and permission paths.
	Home string

	// Client commands.
	HubURL   string
	Location string
	Timeout  time.Duration

	// Hub command.
	ListenAddr      string
	Store           string
	StorePath       string
	PermissionsPath string
	Watch           bool

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Home:       DefaultHome(),
		HubURL:     DefaultHubURL,
		Location:   DefaultLocation,
		Timeout:    DefaultTimeout,
		ListenAddr: DefaultListenAddr,
		Store:      StoreMemory,
		LogLevel:   DefaultLogLevel,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.HubURL == "" {
		return fmt.Errorf("hub-url is required")
	}
	if _, err := url.Parse(c.HubURL); err != nil {
		return fmt.Errorf("hub-url: %w", err)
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	c.Store = strings.ToLower(c.Store)
	switch c.Store {
	case "":
		c.Store = StoreMemory
	case StoreMemory:
	case StoreSQLite:
		if c.StorePath == "" {
			c.StorePath = "store.db"
		}
		c.StorePath = rootify(c.StorePath, c.Home)
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreMemory, StoreSQLite)
	}

	if c.PermissionsPath != "" {
		c.PermissionsPath = rootify(c.PermissionsPath, c.Home)
	} else if c.Watch {
		return fmt.Errorf("watch requires a permissions file")
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
