// Package system provides infrastructure for system-level configuration.
// This covers the settings file (~/.rxforge.yaml) read next to the profile
// toggles: catalog override, diagnostics, redaction and metrics.
package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/rxforge/internal/infrastructure/redaction"
)

// DefaultMaxConcurrent bounds parallel validation when the config sets no limit.
const DefaultMaxConcurrent = 8

// Config represents the global configuration file (~/.rxforge.yaml).
// Profile toggles (profiles.<family>) live in the same file but are read
// through viper, not through this struct.
type Config struct {
	CatalogPath   string            `yaml:"catalog_path"`
	Diagnostics   DiagnosticsConfig `yaml:"diagnostics"`
	Redaction     RedactionConfig   `yaml:"redaction"`
	Metrics       MetricsConfig     `yaml:"metrics"`
	MaxConcurrent int               `yaml:"max_concurrent"`
}

// DiagnosticsConfig configures the payload dump of failed responses.
type DiagnosticsConfig struct {
	// Dir receives one JSON file per 5xx response. Empty disables dumps.
	Dir string `yaml:"dir"`
}

// RedactionConfig configures how sensitive data is sanitized.
type RedactionConfig struct {
	HashMode        HashModeConfig `yaml:"hash_mode"`
	Patterns        []string       `yaml:"patterns"`
	Paths           []string       `yaml:"paths"`
	Headers         []string       `yaml:"headers"`
	DisableGitleaks bool           `yaml:"disable_gitleaks"`
}

// HashModeConfig controls hash-based redaction.
type HashModeConfig struct {
	Salt    string `yaml:"salt"`
	Enabled bool   `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus counters.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Textfile receives the metrics on exit, for the node exporter textfile collector
	Textfile string `yaml:"textfile"`
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		Redaction: RedactionConfig{
			HashMode: HashModeConfig{
				Enabled: false,
			},
			Patterns: []string{},
			Paths:    []string{},
			Headers:  []string{},
		},
		MaxConcurrent: DefaultMaxConcurrent,
	}
}

// DefaultPath returns ~/.rxforge.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".rxforge.yaml"), nil
}

// Load loads the system configuration from the specified path.
// If the file does not exist, returns DefaultConfig() with safe defaults.
// This allows rxforge to work out-of-the-box without configuration.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	if config.MaxConcurrent < 0 {
		return nil, fmt.Errorf("max_concurrent must not be negative, got %d", config.MaxConcurrent)
	}
	if config.MaxConcurrent == 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}

	// Relative paths are taken relative to the config file
	base := filepath.Dir(path)
	config.CatalogPath = resolvePath(base, config.CatalogPath)
	config.Diagnostics.Dir = resolvePath(base, config.Diagnostics.Dir)
	config.Metrics.Textfile = resolvePath(base, config.Metrics.Textfile)

	return config, nil
}

func resolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ToRedactionConfig converts the config redaction section to the redactor format.
func (c *Config) ToRedactionConfig() redaction.Config {
	return redaction.Config{
		Patterns:        c.Redaction.Patterns,
		Paths:           c.Redaction.Paths,
		Headers:         c.Redaction.Headers,
		HashMode:        c.Redaction.HashMode.Enabled,
		Salt:            c.Redaction.HashMode.Salt,
		DisableGitleaks: c.Redaction.DisableGitleaks,
	}
}
