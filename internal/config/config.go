package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration
type Config struct {
	Webhook Webhook `yaml:"webhook"`
	Capture Capture `yaml:"capture"`
	Input   Input   `yaml:"input"`
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
}

// Webhook contains submission endpoint configuration
type Webhook struct {
	URL       string `yaml:"url" env:"WEBHOOK_URL"`
	Encoding  string `yaml:"encoding" env:"WEBHOOK_ENCODING"`
	Timeout   int    `yaml:"timeout"` // seconds
	UserID    string `yaml:"user_id" env:"WEBHOOK_USER_ID"`
	SessionID string `yaml:"session_id" env:"WEBHOOK_SESSION_ID"`
	Role      string `yaml:"role"`
}

// Capture contains audio capture parameters
type Capture struct {
	SampleRate    int `yaml:"sample_rate"`
	Channels      int `yaml:"channels"`
	ChunkInterval int `yaml:"chunk_interval"` // milliseconds
}

// Input contains upload validation and preview configuration
type Input struct {
	PermissiveUploads bool   `yaml:"permissive_uploads"`
	PreviewDir        string `yaml:"preview_dir"`
}

// HTTP contains the diagnostics server configuration
type HTTP struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads the configuration file, applies environment overrides, and
// validates the result. Environment variables win over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns a configuration that works without any file: an
// unconfigured webhook, microphone-shaped capture defaults, and text
// logging to stderr.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Webhook.Encoding == "" {
		c.Webhook.Encoding = "multipart"
	}
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 30
	}
	if c.Capture.SampleRate == 0 {
		c.Capture.SampleRate = 16000
	}
	if c.Capture.Channels == 0 {
		c.Capture.Channels = 1
	}
	if c.Capture.ChunkInterval == 0 {
		c.Capture.ChunkInterval = 100
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = "127.0.0.1"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8081
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Webhook.Validate(); err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates webhook configuration. An empty URL is allowed; the
// client reports itself unconfigured and rejects submissions instead.
func (w *Webhook) Validate() error {
	validEncodings := map[string]bool{"multipart": true, "query": true}
	if !validEncodings[w.Encoding] {
		return fmt.Errorf("encoding must be 'multipart' or 'query', got '%s'", w.Encoding)
	}

	if w.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", w.Timeout)
	}

	return nil
}

// Validate validates capture configuration
func (c *Capture) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000 Hz, got %d", c.SampleRate)
	}

	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}

	if c.ChunkInterval < 10 {
		return fmt.Errorf("chunk_interval must be at least 10 ms, got %d", c.ChunkInterval)
	}

	return nil
}

// Validate validates the diagnostics server configuration
func (h *HTTP) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration
func (l *Logging) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeoutDuration returns the webhook timeout as a time.Duration
func (w *Webhook) GetTimeoutDuration() time.Duration {
	return time.Duration(w.Timeout) * time.Second
}

// GetChunkInterval returns the capture chunk interval as a time.Duration
func (c *Capture) GetChunkInterval() time.Duration {
	return time.Duration(c.ChunkInterval) * time.Millisecond
}

// ListenAddr returns the diagnostics server bind address
func (h *HTTP) ListenAddr() string {
	return fmt.Sprintf("%s:%d", h.Address, h.Port)
}
