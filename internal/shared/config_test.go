package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./data/media.db" {
			t.Errorf("expected database path ./data/media.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5001 {
			t.Errorf("expected server port 5001, got %d", config.Server.Port)
		}

		if config.Client.BackendURL != "http://localhost:5001" {
			t.Errorf("expected backend URL http://localhost:5001, got %s", config.Client.BackendURL)
		}

		if config.Client.StorageKey != "mediaManagerStateV1" {
			t.Errorf("expected storage key mediaManagerStateV1, got %s", config.Client.StorageKey)
		}

		if config.Client.Timeout() != 4500*time.Millisecond {
			t.Errorf("expected timeout 4.5s, got %v", config.Client.Timeout())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
rate_limit = 2.5

[client]
backend_url = "http://backend:9000"
timeout_ms = 1000
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Server.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %v", config.Server.RateLimit)
		}

		if config.Client.Timeout() != time.Second {
			t.Errorf("expected timeout 1s, got %v", config.Client.Timeout())
		}

		if config.Client.StorageKey != "mediaManagerStateV1" {
			t.Errorf("expected default storage key to survive partial config, got %q", config.Client.StorageKey)
		}
	})

	t.Run("LoadConfig YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		testConfig := `server:
  port: 7000
client:
  storage_key: customKey
  seed_demo: false
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 7000 {
			t.Errorf("expected server port 7000, got %d", config.Server.Port)
		}
		if config.Client.StorageKey != "customKey" {
			t.Errorf("expected storage key customKey, got %s", config.Client.StorageKey)
		}
		if config.Client.SeedDemo {
			t.Error("expected seed_demo to be disabled")
		}
	})

	t.Run("LoadConfig JSONC", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.jsonc")

		testConfig := `{
  // backend
  "server": {"port": 7100, "rate_limit": 2.5,},
  /* client side */
  "client": {"offline": true},
}
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 7100 || config.Server.RateLimit != 2.5 {
			t.Errorf("expected port 7100 and rate 2.5, got %d / %v", config.Server.Port, config.Server.RateLimit)
		}
		if !config.Client.Offline {
			t.Error("expected offline client")
		}
		if config.Client.StorageKey != "mediaManagerStateV1" {
			t.Errorf("expected default storage key to survive, got %s", config.Client.StorageKey)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("[server]\nport = 99999\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := ExpandPath("~/.wvp/state.json")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if want := filepath.Join(home, ".wvp/state.json"); got != want {
		t.Errorf("ExpandPath() = %s, want %s", got, want)
	}

	if _, err := ExpandPath("   "); err == nil {
		t.Error("expected error for blank path")
	}
}
