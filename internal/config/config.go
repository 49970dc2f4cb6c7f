// Package config handles loading and parsing of lfsgate configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultShutdownTimeout = 30
	DefaultMaxBodySize     = "1MiB"
	DefaultHomepageURL     = "https://github.com/milkey-mouse/git-lfs-s3-proxy"
	DefaultConcurrency     = 16
	DefaultScheme          = "https"
)

// Config is the top-level configuration for lfsgate.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Signing       SigningConfig       `yaml:"signing"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// ShutdownTimeout is the graceful shutdown window in seconds.
	ShutdownTimeout int `yaml:"shutdown_timeout"`
	// MaxBodySize caps the batch request body, e.g. "1MiB" or "512KB".
	MaxBodySize string `yaml:"max_body_size"`
	// HomepageURL is where GET / redirects to.
	HomepageURL string `yaml:"homepage_url"`
}

// SigningConfig holds settings for presigned URL generation.
type SigningConfig struct {
	// Concurrency bounds the number of in-flight signing operations per batch.
	Concurrency int `yaml:"concurrency"`
	// Scheme is the URL scheme used for the storage endpoint ("https" or "http").
	Scheme string `yaml:"scheme"`
}

// LoggingConfig holds log/slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ObservabilityConfig toggles the system endpoints.
type ObservabilityConfig struct {
	Metrics     bool `yaml:"metrics"`
	HealthCheck bool `yaml:"health_check"`
}

// MaxBodyBytes returns the parsed body size limit.
func (s ServerConfig) MaxBodyBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("parsing server.max_body_size %q: %w", s.MaxBodySize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("server.max_body_size must be positive")
	}
	return int64(n), nil
}

// Load reads a YAML configuration file from the given path and returns
// a parsed Config. It applies defaults for unset values.
// If the primary path fails, it falls back to lfsgate.example.yaml
// in the same directory or parent directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		fallbackPaths := []string{
			filepath.Join(filepath.Dir(path), "lfsgate.example.yaml"),
			filepath.Join(filepath.Dir(path), "..", "lfsgate.example.yaml"),
		}
		var fallbackErr error
		for _, fp := range fallbackPaths {
			data, fallbackErr = os.ReadFile(fp)
			if fallbackErr == nil {
				break
			}
		}
		if fallbackErr != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with every field at its default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxBodySize:     DefaultMaxBodySize,
			HomepageURL:     DefaultHomepageURL,
		},
		Signing: SigningConfig{
			Concurrency: DefaultConcurrency,
			Scheme:      DefaultScheme,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics:     true,
			HealthCheck: true,
		},
	}
}

// applyDefaults fills in any fields that are still at their zero value
// after YAML unmarshaling.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == "" {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.HomepageURL == "" {
		cfg.Server.HomepageURL = DefaultHomepageURL
	}
	if cfg.Signing.Concurrency <= 0 {
		cfg.Signing.Concurrency = DefaultConcurrency
	}
	if cfg.Signing.Scheme == "" {
		cfg.Signing.Scheme = DefaultScheme
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Signing.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("signing.scheme must be http or https, got %q", c.Signing.Scheme)
	}
	if _, err := c.Server.MaxBodyBytes(); err != nil {
		return err
	}
	return nil
}
