package cliconfig

import "os"

// ApplyEnvConfig applies XSTORE_* environment variables to cfg, skipping
// values whose flag was set explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("home", os.Getenv("XSTORE_HOME"), &cfg.Home)
	s.setString("hub-url", os.Getenv("XSTORE_HUB_URL"), &cfg.HubURL)
	s.setString("location", os.Getenv("XSTORE_LOCATION"), &cfg.Location)
	s.setString("listen", os.Getenv("XSTORE_LISTEN"), &cfg.ListenAddr)
	s.setString("store", os.Getenv("XSTORE_STORE"), &cfg.Store)
	s.setString("store-path", os.Getenv("XSTORE_STORE_PATH"), &cfg.StorePath)
	s.setString("permissions", os.Getenv("XSTORE_PERMISSIONS"), &cfg.PermissionsPath)
	s.setString("log-level", os.Getenv("XSTORE_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("XSTORE_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	return s.setBoolFromString("watch", os.Getenv("XSTORE_WATCH"), &cfg.Watch)
}
