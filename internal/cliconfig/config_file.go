package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	HubURL          string `toml:"hub_url"`
	Location        string `toml:"location"`
	Timeout         string `toml:"timeout"`
	ListenAddr      string `toml:"listen"`
	Store           string `toml:"store"`
	StorePath       string `toml:"store_path"`
	PermissionsPath string `toml:"permissions"`
	Watch           *bool  `toml:"watch"`
	LogLevel        string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultHome returns ~/.xstore, or the working directory when the user
// home directory is not accessible.
func DefaultHome() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".xstore")
	}
	return "."
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.xstore/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".xstore", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("hub-url", fc.HubURL, &cfg.HubURL)
	s.setString("location", fc.Location, &cfg.Location)
	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("store", fc.Store, &cfg.Store)
	s.setString("store-path", fc.StorePath, &cfg.StorePath)
	s.setString("permissions", fc.PermissionsPath, &cfg.PermissionsPath)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// rootify returns path unchanged when absolute, otherwise joined to home.
func rootify(path, home string) string {
	if filepath.IsAbs(path) || home == "" {
		return path
	}
	return filepath.Join(home, path)
}
