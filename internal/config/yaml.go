// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds a configuration from defaults, an optional YAML file and
// environment overrides, then validates it. If path is empty the default
// locations are searched; running with no file at all is fine.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		candidates := []string{
			"spectrum.yaml",
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies the few settings worth flipping without
// editing a file or passing flags.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SPECTRUM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SPECTRUM_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("SPECTRUM_DEBUG"); v == "1" || v == "true" {
		c.Debug = true
		c.LogLevel = "debug"
	}
	if v := os.Getenv("SPECTRUM_WS_ADDR"); v != "" {
		c.Transport.WebSocketAddr = v
		c.Transport.WebSocketEnabled = true
	}
}
