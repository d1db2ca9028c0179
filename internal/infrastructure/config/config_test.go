package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
world:
  client_id: "client-gm"
  display_name: "Table GM"
  role: "gm"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "liftnet-test"
  qos: 1
panel:
  rerender_window: 50
  dedup_window_seconds: 8
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.World.ClientID != "client-gm" {
		t.Errorf("World.ClientID = %q, want %q", cfg.World.ClientID, "client-gm")
	}

	if cfg.World.Role != "gm" {
		t.Errorf("World.Role = %q, want %q", cfg.World.Role, "gm")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("world:\n  client_id: c1\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.World.Role != "player" {
		t.Errorf("default World.Role = %q, want %q", cfg.World.Role, "player")
	}
	if cfg.Panel.RerenderWindow != 50 {
		t.Errorf("default Panel.RerenderWindow = %d, want 50", cfg.Panel.RerenderWindow)
	}
	if got := cfg.DedupWindow(); got != 8*time.Second {
		t.Errorf("DedupWindow() = %v, want 8s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty client id",
			mutate:  func(c *Config) { c.World.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "unknown role",
			mutate:  func(c *Config) { c.World.Role = "spectator" },
			wantErr: true,
		},
		{
			name:    "gm role accepted case-insensitively",
			mutate:  func(c *Config) { c.World.Role = "GM" },
			wantErr: false,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "negative rerender window",
			mutate:  func(c *Config) { c.Panel.RerenderWindow = -1 },
			wantErr: true,
		},
		{
			name:    "zero dedup window",
			mutate:  func(c *Config) { c.Panel.DedupWindowSeconds = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "world:\n  client_id: from-file\n  role: player\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("LIFTNET_WORLD_CLIENT_ID", "from-env")
	t.Setenv("LIFTNET_WORLD_ROLE", "gm")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.World.ClientID != "from-env" {
		t.Errorf("World.ClientID = %q, want env override %q", cfg.World.ClientID, "from-env")
	}
	if cfg.World.Role != "gm" {
		t.Errorf("World.Role = %q, want env override %q", cfg.World.Role, "gm")
	}
}
