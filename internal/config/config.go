// Package config loads the YAML configuration shared by the command line tools.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultDefinitionsRoot = "ReplayVersions"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

// Config is the root of the configuration file.
type Config struct {
	DefinitionsRoot string        `yaml:"definitions_root"`
	Log             LogConfig     `yaml:"log"`
	Metrics         MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	// Addr is the listen address of the /metrics endpoint, empty disables it.
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// GetDefinitionsRoot returns the definitions root with priority
// config -> WOWSR_DEFINITIONS -> default.
func (c *Config) GetDefinitionsRoot() string {
	if c != nil && c.DefinitionsRoot != "" {
		return c.DefinitionsRoot
	}
	if env := os.Getenv("WOWSR_DEFINITIONS"); env != "" {
		return env
	}
	return defaultDefinitionsRoot
}

// GetLogLevel returns the configured log level or "info".
func (c *Config) GetLogLevel() string {
	if c != nil && c.Log.Level != "" {
		return c.Log.Level
	}
	return defaultLogLevel
}

// GetLogFormat returns the configured log format or "text".
func (c *Config) GetLogFormat() string {
	if c != nil && c.Log.Format != "" {
		return c.Log.Format
	}
	return defaultLogFormat
}

// Load reads a YAML configuration file.
// If path == "", WOWSR_CONFIG is consulted; when that is empty too, the
// defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WOWSR_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
