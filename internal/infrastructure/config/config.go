package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the liftnet daemon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	World    WorldConfig    `yaml:"world"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Journal  JournalConfig  `yaml:"journal"`
	Panel    PanelConfig    `yaml:"panel"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WorldConfig identifies this client within the shared world.
//
// Exactly one connected client should run with role "gm"; that client is
// the single writer for persisted world state. Everyone else runs as
// "player" and routes writes through the message bus.
type WorldConfig struct {
	ClientID    string `yaml:"client_id"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// JournalConfig contains travel journal settings.
//
// The SQLite event log is always on. The InfluxDB mirror is optional and
// exists only for dashboards; disabling it loses nothing authoritative.
type JournalConfig struct {
	Influx InfluxConfig `yaml:"influx"`
}

// InfluxConfig contains InfluxDB connection settings for the journal mirror.
type InfluxConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// PanelConfig contains timing knobs for the panel controller and messaging.
//
// All fields are milliseconds unless the field name says otherwise.
type PanelConfig struct {
	// RerenderWindow is the coalescing window for panel refreshes.
	// Multiple state changes for one network inside this window produce
	// a single refresh.
	RerenderWindow int `yaml:"rerender_window"`

	// DedupWindowSeconds is how long a seen request ID suppresses
	// duplicate processing of the same logical message.
	DedupWindowSeconds int `yaml:"dedup_window_seconds"`

	// ArrivalDelay is the fixed wait simulating elevator travel before
	// entities are placed at the destination.
	ArrivalDelay int `yaml:"arrival_delay"`

	// SoundFallbackTimeout bounds the wait for sound-effect completion so
	// playback failures cannot stall the workflow.
	SoundFallbackTimeout int `yaml:"sound_fallback_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LIFTNET_SECTION_KEY
// For example: LIFTNET_DATABASE_PATH, LIFTNET_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			ClientID:    "liftnet-client",
			DisplayName: "Liftnet",
			Role:        "player",
		},
		Database: DatabaseConfig{
			Path:        "./data/liftnet.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "liftnet-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Panel: PanelConfig{
			RerenderWindow:       50,
			DedupWindowSeconds:   8,
			ArrivalDelay:         2000,
			SoundFallbackTimeout: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LIFTNET_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// World
	if v := os.Getenv("LIFTNET_WORLD_CLIENT_ID"); v != "" {
		cfg.World.ClientID = v
	}
	if v := os.Getenv("LIFTNET_WORLD_ROLE"); v != "" {
		cfg.World.Role = v
	}

	// Database
	if v := os.Getenv("LIFTNET_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LIFTNET_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LIFTNET_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LIFTNET_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Journal
	if v := os.Getenv("LIFTNET_INFLUX_TOKEN"); v != "" {
		cfg.Journal.Influx.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.World.ClientID == "" {
		errs = append(errs, "world.client_id is required")
	}
	switch strings.ToLower(c.World.Role) {
	case "gm", "player":
	default:
		errs = append(errs, `world.role must be "gm" or "player"`)
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Panel.RerenderWindow < 0 {
		errs = append(errs, "panel.rerender_window must not be negative")
	}
	if c.Panel.DedupWindowSeconds <= 0 {
		errs = append(errs, "panel.dedup_window_seconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RerenderWindow returns the panel rerender coalescing window as a Duration.
func (c *Config) RerenderWindow() time.Duration {
	return time.Duration(c.Panel.RerenderWindow) * time.Millisecond
}

// DedupWindow returns the message dedup window as a Duration.
func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.Panel.DedupWindowSeconds) * time.Second
}

// ArrivalDelay returns the elevator arrival delay as a Duration.
func (c *Config) ArrivalDelay() time.Duration {
	return time.Duration(c.Panel.ArrivalDelay) * time.Millisecond
}

// SoundFallbackTimeout returns the sound-effect fallback timeout as a Duration.
func (c *Config) SoundFallbackTimeout() time.Duration {
	return time.Duration(c.Panel.SoundFallbackTimeout) * time.Millisecond
}
