// Package config loads client configuration from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full client configuration.
type Config struct {
	Transport TransportConfig `koanf:"transport"`
	Plugins   PluginsConfig   `koanf:"plugins"`
	History   HistoryConfig   `koanf:"history"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Log       LogConfig       `koanf:"log"`
}

type TransportConfig struct {
	// Timeout is the overall per-request timeout, as a duration string.
	Timeout string `koanf:"timeout"`
}

type PluginsConfig struct {
	// Paths lists shared objects to load at startup, in firing order.
	Paths []string `koanf:"paths"`
}

type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration from path (missing file is fine) and then from
// RESTHOOK_-prefixed environment variables, which override the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("RESTHOOK_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RESTHOOK_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Defaults.
	if !k.Exists("transport.timeout") {
		k.Set("transport.timeout", "30s")
	}
	if !k.Exists("history.path") {
		k.Set("history.path", "./data/resthook.db")
	}
	if !k.Exists("log.level") {
		k.Set("log.level", "info")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.History.Path = substituteEnvVars(cfg.History.Path)
	for i := range cfg.Plugins.Paths {
		cfg.Plugins.Paths[i] = substituteEnvVars(cfg.Plugins.Paths[i])
	}

	return &cfg, nil
}

// TransportTimeout parses the configured timeout.
func (c *Config) TransportTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Transport.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid transport.timeout %q: %w", c.Transport.Timeout, err)
	}
	return d, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
