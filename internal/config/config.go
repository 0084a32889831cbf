// Package config loads the optional YAML configuration consumed by the
// command-line tools. The library core takes no configuration beyond
// registry options; everything here is CLI convenience.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FormatConfig selects the default rendering of results.
type FormatConfig struct {
	// Style is one of "plain", "pretty", or "latex".
	Style string `yaml:"style"`
	// Abbreviated renders symbols instead of unit names.
	Abbreviated bool `yaml:"abbreviated"`
}

// Config is the CLI configuration file.
type Config struct {
	// DefinitionFiles are extra definition sources loaded after the
	// built-in set, in order.
	DefinitionFiles []string `yaml:"definition_files"`
	// AutoconvertOffset enables offset-to-base autoconversion in
	// multiplicative arithmetic.
	AutoconvertOffset bool `yaml:"autoconvert_offset"`
	// Precision is the number of significant digits printed; 0 means full.
	Precision int `yaml:"precision"`
	Format    FormatConfig `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Format: FormatConfig{Style: "plain"}}
}

// Load reads a YAML config file. An empty path or a missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Format.Style == "" {
		cfg.Format.Style = "plain"
	}
	return cfg, nil
}
