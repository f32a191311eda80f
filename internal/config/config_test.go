package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `
webhook:
  url: "http://localhost:5678/webhook"
  encoding: "query"
  timeout: 10
  user_id: "42"
capture:
  sample_rate: 8000
  channels: 1
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Webhook.URL != "http://localhost:5678/webhook" {
		t.Errorf("unexpected webhook url: %s", cfg.Webhook.URL)
	}
	if cfg.Webhook.Encoding != "query" {
		t.Errorf("unexpected encoding: %s", cfg.Webhook.Encoding)
	}
	if cfg.Webhook.UserID != "42" {
		t.Errorf("unexpected user_id: %s", cfg.Webhook.UserID)
	}
	if cfg.Capture.SampleRate != 8000 {
		t.Errorf("unexpected sample_rate: %d", cfg.Capture.SampleRate)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected level: %s", cfg.Logging.Level)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "webhook:\n  url: \"\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Webhook.Encoding != "multipart" {
		t.Errorf("default encoding: got %s", cfg.Webhook.Encoding)
	}
	if cfg.Webhook.Timeout != 30 {
		t.Errorf("default timeout: got %d", cfg.Webhook.Timeout)
	}
	if cfg.Capture.SampleRate != 16000 || cfg.Capture.Channels != 1 {
		t.Errorf("default capture: got %d/%d", cfg.Capture.SampleRate, cfg.Capture.Channels)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("default logging: got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "http://env-wins.example/hook")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, `
webhook:
  url: "http://file.example/hook"
logging:
  level: "info"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Webhook.URL != "http://env-wins.example/hook" {
		t.Errorf("env override lost: %s", cfg.Webhook.URL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env override lost: %s", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "bad encoding",
			mutate:  func(c *Config) { c.Webhook.Encoding = "soap" },
			wantMsg: "encoding must be",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Webhook.Timeout = 0 },
			wantMsg: "timeout must be",
		},
		{
			name:    "sample rate too low",
			mutate:  func(c *Config) { c.Capture.SampleRate = 4000 },
			wantMsg: "sample_rate must be",
		},
		{
			name:    "too many channels",
			mutate:  func(c *Config) { c.Capture.Channels = 6 },
			wantMsg: "channels must be",
		},
		{
			name:    "bad http port",
			mutate:  func(c *Config) { c.HTTP.Enabled = true; c.HTTP.Port = 0 },
			wantMsg: "http port must be",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantMsg: "level must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}
