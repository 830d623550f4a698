package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				HubURL:          "ws://hub.example:9000",
				Timeout:         "2s",
				Store:           "sqlite",
				StorePath:       "hub.db",
				PermissionsPath: "perms.yaml",
				Watch:           &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				HubURL:          "ws://hub.example:9000",
				Timeout:         2 * time.Second,
				Store:           "sqlite",
				StorePath:       "hub.db",
				PermissionsPath: "perms.yaml",
				Watch:           true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				HubURL:   "ws://file.example",
				LogLevel: "debug",
			},
			changed: map[string]bool{"hub-url": true},
			initial: Config{
				HubURL:   "ws://flag.example",
				LogLevel: "info",
			},
			expected: Config{
				HubURL:   "ws://flag.example", // unchanged because flag was set
				LogLevel: "debug",
			},
		},
		{
			name:       "empty values keep defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{Timeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
hub_url = "wss://hub.example/hub"
timeout = "3s"
listen = ":9000"
store = "sqlite"
store_path = "/var/lib/xstore/store.db"
permissions = "permissions.toml"
watch = true
log_level = "debug"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.HubURL != "wss://hub.example/hub" {
		t.Errorf("HubURL = %v", fc.HubURL)
	}
	if fc.Timeout != "3s" {
		t.Errorf("Timeout = %v, want 3s", fc.Timeout)
	}
	if fc.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %v, want :9000", fc.ListenAddr)
	}
	if fc.Store != "sqlite" || fc.StorePath != "/var/lib/xstore/store.db" {
		t.Errorf("Store, StorePath = %v, %v", fc.Store, fc.StorePath)
	}
	if fc.PermissionsPath != "permissions.toml" {
		t.Errorf("PermissionsPath = %v", fc.PermissionsPath)
	}
	if fc.Watch == nil || !*fc.Watch {
		t.Errorf("Watch = %v, want true", fc.Watch)
	}
	if fc.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", fc.LogLevel)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
hub_url = "ws://x"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".xstore") {
		t.Errorf("DefaultConfigPath() = %v, should contain .xstore", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
