// =============================================================================
// BOM Tool - Configuration Module
// =============================================================================
//
// This module loads the optional YAML configuration file. Every setting has
// a default, so the tool runs without any configuration file at all.
// Command-line flags override whatever is loaded here.
//
// EXAMPLE (bomtool.yaml):
//   log_level: info
//   log_format: text
//   merge:
//     quantity_field: Qty
//     reference_field: Reference
//   output:
//     workbook: ""
//     checksums: true
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when --config is not set.
const DefaultPath = "bomtool.yaml"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the tool configuration.
type Config struct {
	// LogLevel controls the verbosity of diagnostics.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the diagnostic format: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// Merge holds defaults for the merge action.
	Merge MergeConfig `yaml:"merge"`

	// Output holds settings shared by every action.
	Output OutputConfig `yaml:"output"`
}

// MergeConfig holds the field names used when rows are merged and the
// corresponding flags are not given.
type MergeConfig struct {
	// QuantityField receives the count of merged rows.
	// Empty disables counting.
	QuantityField string `yaml:"quantity_field"`

	// ReferenceField collects the designators of merged rows.
	// Empty disables concatenation.
	ReferenceField string `yaml:"reference_field"`
}

// OutputConfig controls what is written besides the text BOM.
type OutputConfig struct {
	// Workbook is an XLSX path that receives a copy of the output.
	// Empty disables workbook output.
	Workbook string `yaml:"workbook"`

	// Checksums enables xxhash checksums of every written file in the
	// run summary.
	// Default: true
	Checksums *bool `yaml:"checksums"`
}

// ChecksumsEnabled reports whether output checksums should be computed.
func (o OutputConfig) ChecksumsEnabled() bool {
	return o.Checksums == nil || *o.Checksums
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path.
//
// A missing file is only tolerated at DefaultPath (or an empty path), in
// which case the defaults are returned. A file that was asked for
// explicitly must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", cfg.LogFormat)
	}

	if w := cfg.Output.Workbook; w != "" && !strings.HasSuffix(strings.ToLower(w), ".xlsx") {
		return fmt.Errorf("output.workbook must be an .xlsx path, got %q", w)
	}

	return nil
}
