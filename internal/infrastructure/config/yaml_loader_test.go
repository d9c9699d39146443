package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/rxforge/internal/application/errors"
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

func TestLoadDefault_DeclaresAllFamilies(t *testing.T) {
	catalog, err := NewCatalogLoader().LoadDefault()
	require.NoError(t, err)

	reg := catalog.Registry
	tests := []struct {
		family   values.ProfileFamily
		def      string
		versions []string
	}{
		{values.FamilyWorkflow, "1.4.0", []string{"1.2.0", "1.3.0", "1.4.0", "1.5.0"}},
		{values.FamilyPrescription, "1.1.0", []string{"1.0.2", "1.1.0", "1.2.0"}},
		{values.FamilyBaseData, "1.1.0", []string{"1.0.3", "1.1.0", "1.2.0"}},
		{values.FamilyMedication, "1.1.0", []string{"1.0.0", "1.1.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			def, ok := reg.Default(tt.family)
			require.True(t, ok)
			assert.Equal(t, tt.def, def.String())

			var got []string
			for _, v := range reg.Versions(tt.family) {
				got = append(got, v.String())
			}
			assert.Equal(t, tt.versions, got)
		})
	}

	assert.Equal(t, 3, catalog.Rules.Len())
	assert.Len(t, catalog.Rules.For(document.KindMedicationRequest), 1)
}

func TestLoadFromReader_DefaultFromValidityWindow(t *testing.T) {
	yaml := `
families:
  - name: workflow
    versions:
      - version: 1.3.0
        valid_until: "2025-01-14"
      - version: 1.4.0
        valid_from: "2024-11-01"
      - version: 1.5.0
        valid_from: "2025-11-15"
`
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"only old version valid", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "1.3.0"},
		{"overlap picks newest", time.Date(2025, 1, 14, 18, 0, 0, 0, time.UTC), "1.4.0"},
		{"after old window", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "1.4.0"},
		{"newest valid", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "1.5.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewCatalogLoader(WithLoadClock(func() time.Time { return tt.now }))
			catalog, err := loader.LoadFromReader(strings.NewReader(yaml))
			require.NoError(t, err)

			def, ok := catalog.Registry.Default(values.FamilyWorkflow)
			require.True(t, ok)
			assert.Equal(t, tt.want, def.String())
		})
	}
}

func TestLoadFromReader_SingleVersionIsDefault(t *testing.T) {
	yaml := `
families:
  - name: medication
    versions:
      - version: "1.1"
        valid_until: "2020-01-01"
`
	catalog, err := NewCatalogLoader().LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)

	def, _ := catalog.Registry.Default(values.FamilyMedication)
	assert.Equal(t, "1.1.0", def.String())
}

func TestLoadFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"invalid yaml", `families: [[[`, "failed to decode"},
		{"no families", `rules: []`, "no families"},
		{"bad version", "families:\n  - name: workflow\n    versions: [{version: abc}]", "invalid profile version"},
		{"bad date", "families:\n  - name: workflow\n    versions: [{version: 1.0.0, valid_from: \"01.01.2025\"}]", "valid_from"},
		{"reversed window", "families:\n  - name: workflow\n    versions: [{version: 1.0.0, valid_from: \"2025-02-01\", valid_until: \"2025-01-01\"}]", "ends before it starts"},
		{"undeclared default", "families:\n  - name: workflow\n    default: 2.0.0\n    versions: [{version: 1.0.0}]", "not declared"},
		{"no valid version", "families:\n  - name: workflow\n    versions:\n      - {version: 1.0.0, valid_until: \"2000-01-01\"}\n      - {version: 1.1.0, valid_until: \"2000-01-01\"}", "no version is valid"},
		{"no versions", "families:\n  - name: workflow", "declares no versions"},
		{"bad rule", "families:\n  - name: workflow\n    versions: [{version: 1.0.0}]\nrules:\n  - {kind: Medication, name: x, expr: \"fields.(\"}", "invalid rule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogLoader().LoadFromReader(strings.NewReader(tt.yaml))
			require.Error(t, err)
			var ce *apperrors.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "catalog", ce.Aspect)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("families:\n  - name: workflow\n    default: 1.4.0\n    versions: [{version: 1.4.0}]\n"), 0o600))

	catalog, err := NewCatalogLoader().Load(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Registry.Families(), 1)

	_, err = NewCatalogLoader().Load(filepath.Join(dir, "missing.yaml"))
	var ce *apperrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
}
