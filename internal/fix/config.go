package fix

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the optional run configuration.
type Config struct {
	// Marker is the override annotation type descriptor.
	Marker string `yaml:"marker"`
	// Exclude lists entry-name prefixes copied verbatim without
	// transformation (typically shaded third-party trees).
	Exclude []string `yaml:"exclude"`
}

func (c *Config) defaults() {
	if c.Marker == "" {
		c.Marker = DefaultMarker
	}
}

// Excluded reports whether an entry name falls under an excluded prefix.
func (c *Config) Excluded(name string) bool {
	for _, p := range c.Exclude {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// LoadConfigFile reads a YAML config file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("fix: config %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, nil
}
