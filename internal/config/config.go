package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mcdonaldj/bfm/internal/dirent"
)

const envPrefix = "BFM"

// Config holds the tool's settings. An empty LogDir disables logging;
// CreateMode is an octal permission string such as "0700".
type Config struct {
	LogDir       string `yaml:"log_dir"       envconfig:"LOG_DIR"`
	LogFile      string `yaml:"log_file"      envconfig:"LOG_FILE"`
	AppendLimit  int    `yaml:"append_limit"  envconfig:"APPEND_LIMIT"`
	ReadBytes    int    `yaml:"read_bytes"    envconfig:"READ_BYTES"`
	CreateMode   string `yaml:"create_mode"   envconfig:"CREATE_MODE"`
	DirentBuffer int    `yaml:"dirent_buffer" envconfig:"DIRENT_BUFFER"`
}

// DefaultConfig returns the built-in settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		LogFile:      "log.txt",
		AppendLimit:  50,
		ReadBytes:    50,
		CreateMode:   "0700",
		DirentBuffer: dirent.DefaultBufferSize,
	}
}

// ConfigPath returns BFM_CONFIG_FILE when set, else ~/.bfm/config.yaml.
func ConfigPath() (string, error) {
	if p := os.Getenv(envPrefix + "_CONFIG_FILE"); p != "" {
		return ExpandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".bfm", "config.yaml"), nil
}

// Load reads the config from ConfigPath.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, falling back to defaults when the file
// does not exist, then applies BFM_* environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	if cfg.LogDir, err = ExpandPath(cfg.LogDir); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to ConfigPath.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the operations cannot work with.
func (c *Config) Validate() error {
	if c.AppendLimit <= 0 {
		return fmt.Errorf("append_limit must be positive, got %d", c.AppendLimit)
	}
	if c.ReadBytes <= 0 {
		return fmt.Errorf("read_bytes must be positive, got %d", c.ReadBytes)
	}
	if c.DirentBuffer < dirent.RecordSize("x") {
		return fmt.Errorf("dirent_buffer must be at least %d bytes, got %d", dirent.RecordSize("x"), c.DirentBuffer)
	}
	if c.LogDir != "" && c.LogFile == "" {
		return errors.New("log_file must be set when log_dir is")
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	return nil
}

// Mode parses CreateMode as an octal permission.
func (c *Config) Mode() (uint32, error) {
	m, err := strconv.ParseUint(c.CreateMode, 8, 32)
	if err != nil || m > 0o7777 {
		return 0, fmt.Errorf("create_mode %q is not an octal permission", c.CreateMode)
	}
	return uint32(m), nil
}

// LogPath returns the full path of the log file, or "" when logging is
// disabled.
func (c *Config) LogPath() string {
	if c.LogDir == "" {
		return ""
	}
	return filepath.Join(c.LogDir, c.LogFile)
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", path, err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
