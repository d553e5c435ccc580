// Package config provides configuration types for the bulkhead demo
// service: nested, yaml-tagged sections with defaults and a handful of
// env var overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete demo-service configuration. It governs
// only the ambient service wrapped around the bulkhead — limit,
// shutdown timeout, logging — never the bulkhead's own semantics, which
// have no configuration surface beyond the limit passed to bulkhead.New.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Bulkhead BulkheadConfig `yaml:"bulkhead"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig defines the demo gRPC/HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	GRPCPort        int           `yaml:"grpcPort"`
	HTTPPort        int           `yaml:"httpPort"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// BulkheadConfig defines the single bulkhead instance's capacity. There
// is no queue depth or queue timeout here: this bulkhead never buffers
// or waits when saturated, it only admits or rejects.
type BulkheadConfig struct {
	Limit int `yaml:"limit"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewDefaultConfig returns configuration with sensible defaults for local
// development.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			GRPCPort:        50100,
			HTTPPort:        8100,
			ShutdownTimeout: 30 * time.Second,
		},
		Bulkhead: BulkheadConfig{
			Limit: 32,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, overridden by a small set of
// environment variables (BULKHEAD_GRPC_PORT, BULKHEAD_HTTP_PORT,
// BULKHEAD_LIMIT, LOG_LEVEL). It reads no file — LoadFile is the
// YAML-decoding loader — so the demo binary runs with zero external files.
func Load() (*Config, error) {
	cfg := NewDefaultConfig()

	if v := os.Getenv("BULKHEAD_GRPC_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.GRPCPort = n
		}
	}
	if v := os.Getenv("BULKHEAD_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = n
		}
	}

	return applyEnvOverrides(cfg), nil
}

// LoadFile decodes a YAML file into a Config seeded with defaults, then
// applies the BULKHEAD_LIMIT and LOG_LEVEL environment overrides. Unlike
// Load, it does not apply the BULKHEAD_GRPC_PORT and BULKHEAD_HTTP_PORT
// overrides. The demo binary does not call it; it uses Load.
func LoadFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return applyEnvOverrides(cfg), nil
}

func applyEnvOverrides(cfg *Config) *Config {
	if v := os.Getenv("BULKHEAD_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Bulkhead.Limit = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return cfg
}
