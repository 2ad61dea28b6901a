package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withConfigFile points BFM_CONFIG_FILE at a fresh temp location.
func withConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".bfm", "config.yaml")
	t.Setenv("BFM_CONFIG_FILE", path)
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.AppendLimit != 50 {
		t.Errorf("AppendLimit = %d, expected 50", cfg.AppendLimit)
	}
	if cfg.ReadBytes != 50 {
		t.Errorf("ReadBytes = %d, expected 50", cfg.ReadBytes)
	}
	if cfg.DirentBuffer != 1024 {
		t.Errorf("DirentBuffer = %d, expected 1024", cfg.DirentBuffer)
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, logging should be off by default", cfg.LogDir)
	}
	mode, err := cfg.Mode()
	if err != nil || mode != 0o700 {
		t.Errorf("Mode() = %o, %v; expected 0700", mode, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	withConfigFile(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed for missing config: %v", err)
	}
	if cfg.LogFile != "log.txt" {
		t.Errorf("Expected default log file, got %q", cfg.LogFile)
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := withConfigFile(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configContent := `
log_dir: /var/log/bfm
log_file: actions.log
append_limit: 20
read_bytes: 10
create_mode: "0644"
dirent_buffer: 4096
`
	if err := os.WriteFile(path, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogDir != "/var/log/bfm" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.LogPath() != "/var/log/bfm/actions.log" {
		t.Errorf("LogPath() = %q", cfg.LogPath())
	}
	if cfg.AppendLimit != 20 || cfg.ReadBytes != 10 || cfg.DirentBuffer != 4096 {
		t.Errorf("unexpected limits: %+v", cfg)
	}
	if mode, _ := cfg.Mode(); mode != 0o644 {
		t.Errorf("Mode() = %o, expected 0644", mode)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	withConfigFile(t)
	t.Setenv("BFM_LOG_DIR", "/tmp/bfm-logs")
	t.Setenv("BFM_APPEND_LIMIT", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogDir != "/tmp/bfm-logs" {
		t.Errorf("LogDir = %q, expected env override", cfg.LogDir)
	}
	if cfg.AppendLimit != 7 {
		t.Errorf("AppendLimit = %d, expected 7", cfg.AppendLimit)
	}
	if cfg.ReadBytes != 50 {
		t.Errorf("ReadBytes = %d, unset env var should keep default", cfg.ReadBytes)
	}
}

func TestEnvironmentOverrideInvalid(t *testing.T) {
	withConfigFile(t)
	t.Setenv("BFM_READ_BYTES", "lots")

	if _, err := Load(); err == nil {
		t.Error("Load should fail for a non-numeric BFM_READ_BYTES")
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	path := withConfigFile(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("this: is: not: valid: yaml: [[["), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load should fail for malformed YAML")
	}
}

func TestLoadReadFileError(t *testing.T) {
	path := withConfigFile(t)

	// A directory where the config file should be causes a read error.
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load should fail when config file is a directory")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"zero append limit", func(c *Config) { c.AppendLimit = 0 }, "append_limit"},
		{"negative read bytes", func(c *Config) { c.ReadBytes = -1 }, "read_bytes"},
		{"tiny dirent buffer", func(c *Config) { c.DirentBuffer = 8 }, "dirent_buffer"},
		{"non-octal mode", func(c *Config) { c.CreateMode = "0789" }, "create_mode"},
		{"mode too large", func(c *Config) { c.CreateMode = "77777" }, "create_mode"},
		{"log dir without file", func(c *Config) { c.LogDir = "/logs"; c.LogFile = "" }, "log_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q should mention %q", err, tt.errMsg)
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	path := withConfigFile(t)

	cfg := DefaultConfig()
	cfg.LogDir = "/my/logs"
	cfg.AppendLimit = 30

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded.LogDir != cfg.LogDir {
		t.Errorf("LogDir mismatch after save/load")
	}
	if loaded.AppendLimit != cfg.AppendLimit {
		t.Errorf("AppendLimit mismatch after save/load")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home dir, skipping test")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
		{"~", filepath.Join(home, "")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) failed: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestConfigPathDefault(t *testing.T) {
	t.Setenv("BFM_CONFIG_FILE", "")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath failed: %v", err)
	}
	if !filepath.IsAbs(path) || !strings.HasSuffix(path, filepath.Join(".bfm", "config.yaml")) {
		t.Errorf("unexpected ConfigPath %s", path)
	}
}
