package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "aerolink.yaml")

	tests := []struct {
		name      string
		setup     func(t *testing.T)
		validate  func(*testing.T, *Config)
		checkFile func(*testing.T)
	}{
		{
			name:  "NewFile_Defaults",
			setup: func(t *testing.T) {}, // No file
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Sim.ClientName != "aerolink" {
					t.Errorf("expected default client name 'aerolink', got %q", cfg.Sim.ClientName)
				}
				if !cfg.Sim.AutoConnect {
					t.Error("expected auto_connect default true")
				}
				if time.Duration(cfg.Sim.ReconnectDelay) != 5*time.Second {
					t.Errorf("expected reconnect_delay 5s, got %v", time.Duration(cfg.Sim.ReconnectDelay))
				}
			},
			checkFile: func(t *testing.T) {
				data, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("default config not written: %v", err)
				}
				if !strings.Contains(string(data), "client_name") {
					t.Error("written config missing client_name key")
				}
			},
		},
		{
			name: "ExistingFile_MergesDefaults",
			setup: func(t *testing.T) {
				content := "sim:\n  client_name: Test Rig\n  reconnect_delay: 1d\nlog:\n  level: DEBUG\n"
				if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Sim.ClientName != "Test Rig" {
					t.Errorf("override lost: client_name = %q", cfg.Sim.ClientName)
				}
				if time.Duration(cfg.Sim.ReconnectDelay) != 24*time.Hour {
					t.Errorf("extended duration not parsed: %v", time.Duration(cfg.Sim.ReconnectDelay))
				}
				if cfg.Log.Level != "DEBUG" {
					t.Errorf("log level override lost: %q", cfg.Log.Level)
				}
				// Untouched sections keep defaults.
				if cfg.Bridge.Addr != "127.0.0.1:8749" {
					t.Errorf("bridge addr default lost: %q", cfg.Bridge.Addr)
				}
				if cfg.Sim.MaxReconnectAttempts != -1 {
					t.Errorf("max_reconnect_attempts default lost: %d", cfg.Sim.MaxReconnectAttempts)
				}
			},
			checkFile: func(t *testing.T) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(configPath)
			tt.setup(t)

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.validate(t, cfg)
			tt.checkFile(t)
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "aerolink.yaml")
	if err := os.WriteFile(configPath, []byte("sim: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGenerateDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sub", "aerolink.yaml")

	if err := GenerateDefault(configPath); err != nil {
		t.Fatalf("GenerateDefault failed: %v", err)
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("config not created: %v", err)
	}
	size := info.Size()

	// Second call must not touch the existing file.
	if err := GenerateDefault(configPath); err != nil {
		t.Fatalf("GenerateDefault second call failed: %v", err)
	}
	info, err = os.Stat(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != size {
		t.Error("existing config was rewritten")
	}
}
