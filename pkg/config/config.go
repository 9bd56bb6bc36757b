// Package config loads the YAML configuration for the tools built on the
// client library. Absent fields keep their defaults, so a minimal file
// only states what differs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Sim      SimConfig      `yaml:"sim"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Facility FacilityConfig `yaml:"facility"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	// Path is an optional log file next to stdout. Empty disables it.
	Path string `yaml:"path"`
}

// SimConfig holds the connection lifecycle settings.
type SimConfig struct {
	ClientName           string   `yaml:"client_name"`
	DLLPath              string   `yaml:"dll_path"`
	ConfigIndex          int      `yaml:"config_index"`
	AutoConnect          bool     `yaml:"auto_connect"`
	ReconnectDelay       Duration `yaml:"reconnect_delay"`
	MessageCheckInterval Duration `yaml:"message_check_interval"`
	InitialConnectDelay  Duration `yaml:"initial_connect_delay"`
	OpenHandshakeTimeout Duration `yaml:"open_handshake_timeout"`
	// MaxReconnectAttempts caps consecutive failed attempts; -1 retries
	// forever.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts"`
}

// BridgeConfig holds the websocket bridge settings.
type BridgeConfig struct {
	Addr string `yaml:"addr"`
	// TelemetryInterval is the push period for websocket clients.
	TelemetryInterval Duration `yaml:"telemetry_interval"`
}

// FacilityConfig holds the facility cache settings.
type FacilityConfig struct {
	DBPath string `yaml:"db_path"`
	// Radius is the default search radius for nearby queries.
	Radius Distance `yaml:"radius"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "INFO",
		},
		Sim: SimConfig{
			ClientName:           "aerolink",
			AutoConnect:          true,
			ReconnectDelay:       Duration(5 * time.Second),
			MessageCheckInterval: Duration(10 * time.Millisecond),
			OpenHandshakeTimeout: Duration(10 * time.Second),
			MaxReconnectAttempts: -1,
		},
		Bridge: BridgeConfig{
			Addr:              "127.0.0.1:8749",
			TelemetryInterval: Duration(time.Second),
		},
		Facility: FacilityConfig{
			DBPath: "data/facilities.db",
			Radius: Distance(50000),
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing
// file is written out with the defaults first.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Aerolink Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles)

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
