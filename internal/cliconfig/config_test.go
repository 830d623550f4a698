package cliconfig

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HubURL != DefaultHubURL {
		t.Errorf("HubURL = %v, want %v", cfg.HubURL, DefaultHubURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Store = %v, want %v", cfg.Store, StoreMemory)
	}
	if cfg.Location != "file:///" {
		t.Errorf("Location = %v, want file:///", cfg.Location)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid minimal config",
			config:  Config{HubURL: "ws://localhost:8787", Timeout: time.Second},
			wantErr: false,
		},
		{
			name:    "missing hub url",
			config:  Config{Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "invalid hub url",
			config:  Config{HubURL: "ws://[::1", Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "non-positive timeout",
			config:  Config{HubURL: "ws://localhost:8787"},
			wantErr: true,
		},
		{
			name:    "unknown store",
			config:  Config{HubURL: "ws://localhost:8787", Timeout: time.Second, Store: "redis"},
			wantErr: true,
		},
		{
			name:    "watch without permissions",
			config:  Config{HubURL: "ws://localhost:8787", Timeout: time.Second, Watch: true},
			wantErr: true,
		},
		{
			name:    "store name is case-insensitive",
			config:  Config{HubURL: "ws://localhost:8787", Timeout: time.Second, Store: "SQLite"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Derivations(t *testing.T) {
	home := filepath.Join(string(filepath.Separator), "srv", "xstore")

	// Relative paths resolve against home.
	c1 := Config{
		Home:            home,
		HubURL:          "ws://localhost:8787",
		Timeout:         time.Second,
		Store:           StoreSQLite,
		PermissionsPath: "permissions.toml",
	}
	if err := c1.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if want := filepath.Join(home, "store.db"); c1.StorePath != want {
		t.Errorf("StorePath = %v, want %v", c1.StorePath, want)
	}
	if want := filepath.Join(home, "permissions.toml"); c1.PermissionsPath != want {
		t.Errorf("PermissionsPath = %v, want %v", c1.PermissionsPath, want)
	}
	if c1.Location != DefaultLocation || c1.LogLevel != DefaultLogLevel {
		t.Errorf("Location, LogLevel = %v, %v; want defaults", c1.Location, c1.LogLevel)
	}

	// Absolute paths are kept.
	abs := filepath.Join(string(filepath.Separator), "data", "hub.db")
	c2 := Config{
		Home:      home,
		HubURL:    "ws://localhost:8787",
		Timeout:   time.Second,
		Store:     StoreSQLite,
		StorePath: abs,
	}
	if err := c2.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c2.StorePath != abs {
		t.Errorf("StorePath = %v, want %v", c2.StorePath, abs)
	}

	// Memory store ignores the path.
	c3 := Config{HubURL: "ws://localhost:8787", Timeout: time.Second}
	if err := c3.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c3.Store != StoreMemory || c3.StorePath != "" {
		t.Errorf("Store, StorePath = %v, %q", c3.Store, c3.StorePath)
	}
}
