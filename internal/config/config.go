package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	AI     AIConfig     `yaml:"ai"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds server configuration. WriteTimeout is deliberately long:
// shiori generation waits on several AI calls plus a browser render, so the
// long-running-request allowance is configured apart from the header and idle
// timeouts.
type ServerConfig struct {
	Port              int      `yaml:"port"`
	Host              string   `yaml:"host"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	WriteTimeout      Duration `yaml:"write_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
}

// AIConfig holds the AI collaborator configuration. The key may also come
// from the OPENAI_API_KEY environment variable.
type AIConfig struct {
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	ChatModel    string   `yaml:"chat_model"`
	ImageModel   string   `yaml:"image_model"`
	CoverTimeout Duration `yaml:"cover_timeout"`
	Retries      int      `yaml:"retries"`
}

// RenderConfig holds PDF rendering configuration
type RenderConfig struct {
	MaxConcurrent int64  `yaml:"max_concurrent"`
	PaperSize     string `yaml:"paper_size"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(5 * time.Minute)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 64 << 20
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.openai.com/v1"
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = "gpt-4o-mini"
	}
	if c.AI.ImageModel == "" {
		c.AI.ImageModel = "gpt-image-1"
	}
	if c.AI.CoverTimeout == 0 {
		c.AI.CoverTimeout = Duration(30 * time.Second)
	}
	if c.AI.Retries == 0 {
		c.AI.Retries = 2
	}
	if c.Render.MaxConcurrent == 0 {
		c.Render.MaxConcurrent = 2
	}
	if c.Render.PaperSize == "" {
		c.Render.PaperSize = "A4"
	}
}
