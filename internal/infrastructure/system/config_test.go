package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Load_FileNotExists(t *testing.T) {
	loader := NewConfigLoader()
	cfg, err := loader.Load("/nonexistent/config.yaml")

	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.CatalogPath)
	assert.Empty(t, cfg.Diagnostics.Dir)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMaxConcurrent, cfg.MaxConcurrent)
}

func TestConfigLoader_Load_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yaml := `
catalog_path: catalogs/custom.yaml
max_concurrent: 4

profiles:
  workflow: "1.4"

diagnostics:
  dir: /var/lib/rxforge/dumps

redaction:
  patterns:
    - "secret=\\S+"
  paths:
    - "telecom.value"
    - "address.city"
  headers:
    - X-Api-Key
  hash_mode:
    enabled: true
    salt: "test-salt"

metrics:
  enabled: true
  textfile: metrics/rxforge.prom
`
	err := os.WriteFile(configPath, []byte(yaml), 0o600)
	require.NoError(t, err)

	loader := NewConfigLoader()
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "catalogs", "custom.yaml"), cfg.CatalogPath)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, "/var/lib/rxforge/dumps", cfg.Diagnostics.Dir)

	assert.Len(t, cfg.Redaction.Patterns, 1)
	assert.Len(t, cfg.Redaction.Paths, 2)
	assert.Equal(t, []string{"X-Api-Key"}, cfg.Redaction.Headers)
	assert.True(t, cfg.Redaction.HashMode.Enabled)
	assert.Equal(t, "test-salt", cfg.Redaction.HashMode.Salt)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, filepath.Join(tmpDir, "metrics", "rxforge.prom"), cfg.Metrics.Textfile)
}

func TestConfigLoader_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "catalog_path: [unclosed"},
		{"negative concurrency", "max_concurrent: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := NewConfigLoader().Load(path)
			assert.Error(t, err)
		})
	}
}

func TestConfigLoader_Load_ZeroConcurrencyUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrent: 0\n"), 0o600))

	cfg, err := NewConfigLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxConcurrent, cfg.MaxConcurrent)
}

func TestConfig_ToRedactionConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redaction.Patterns = []string{"secret=\\S+"}
	cfg.Redaction.Paths = []string{"telecom.value"}
	cfg.Redaction.Headers = []string{"X-Api-Key"}
	cfg.Redaction.HashMode = HashModeConfig{Enabled: true, Salt: "pepper"}
	cfg.Redaction.DisableGitleaks = true

	rc := cfg.ToRedactionConfig()

	assert.Equal(t, []string{"secret=\\S+"}, rc.Patterns)
	assert.Equal(t, []string{"telecom.value"}, rc.Paths)
	assert.Equal(t, []string{"X-Api-Key"}, rc.Headers)
	assert.True(t, rc.HashMode)
	assert.Equal(t, "pepper", rc.Salt)
	assert.True(t, rc.DisableGitleaks)
}
