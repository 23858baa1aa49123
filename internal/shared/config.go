package shared

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML, YAML or JSONC file.
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server" json:"server"`
	Database DatabaseConfig `toml:"database" yaml:"database" json:"database"`
	Client   ClientConfig   `toml:"client" yaml:"client" json:"client"`
	Log      LogConfig      `toml:"log" yaml:"log" json:"log"`
}

// ServerConfig contains HTTP server settings for the catalogue backend.
type ServerConfig struct {
	Host       string  `toml:"host" yaml:"host" json:"host"`
	Port       int     `toml:"port" yaml:"port" json:"port"`
	StaticRoot string  `toml:"static_root" yaml:"static_root" json:"static_root"`
	RateLimit  float64 `toml:"rate_limit" yaml:"rate_limit" json:"rate_limit"` // requests per second, 0 disables
	Burst      int     `toml:"burst" yaml:"burst" json:"burst"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" yaml:"path" json:"path"`
	MaxOpenConns int    `toml:"max_open_conns" yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" yaml:"max_idle_conns" json:"max_idle_conns"`
}

// ClientConfig contains settings for the catalogue client (engine, gateway and snapshot).
type ClientConfig struct {
	BackendURL   string `toml:"backend_url" yaml:"backend_url" json:"backend_url"`
	TimeoutMS    int    `toml:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
	SnapshotPath string `toml:"snapshot_path" yaml:"snapshot_path" json:"snapshot_path"`
	StorageKey   string `toml:"storage_key" yaml:"storage_key" json:"storage_key"`
	SeedDemo     bool   `toml:"seed_demo" yaml:"seed_demo" json:"seed_demo"`
	Offline      bool   `toml:"offline" yaml:"offline" json:"offline"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level" yaml:"level" json:"level"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the per-request backend timeout, falling back to 4.5s.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 4500 * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yaml or .yml are decoded as YAML, .json and .jsonc as JSON
// with comments and trailing commas allowed; everything else is TOML.
// Values missing from the file keep the defaults of the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports configuration values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Client.StorageKey) == "" {
		return fmt.Errorf("%w: client storage_key is required", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("%w: path is empty", ErrInvalidArgument)
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return trimmed, nil
}
