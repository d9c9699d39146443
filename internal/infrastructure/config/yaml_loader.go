// Package config provides infrastructure for loading the profile catalog and
// reading process-wide profile toggles.
// This package handles YAML parsing, file I/O and rule compilation.
package config

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	apperrors "github.com/reglet-dev/rxforge/internal/application/errors"
	"github.com/reglet-dev/rxforge/internal/domain/builder"
	"github.com/reglet-dev/rxforge/internal/domain/profiles"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// catalogFile is the YAML shape of a profile catalog.
type catalogFile struct {
	Families []familyEntry `yaml:"families"`
	Rules    []ruleEntry   `yaml:"rules"`
}

type familyEntry struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Default     string         `yaml:"default"`
	Versions    []versionEntry `yaml:"versions"`
}

type versionEntry struct {
	Version    string `yaml:"version"`
	ValidFrom  string `yaml:"valid_from"`
	ValidUntil string `yaml:"valid_until"`
}

type ruleEntry struct {
	Kind    string   `yaml:"kind"`
	Name    string   `yaml:"name"`
	Fields  []string `yaml:"fields"`
	When    string   `yaml:"when"`
	Expr    string   `yaml:"expr"`
	Message string   `yaml:"message"`
}

// Catalog is a loaded profile catalog: the frozen registry plus the compiled
// expression rules.
type Catalog struct {
	Registry *profiles.Registry
	Rules    builder.RuleSet
}

// CatalogLoader loads profile catalogs from YAML.
type CatalogLoader struct {
	now func() time.Time
}

// LoaderOption configures a CatalogLoader.
type LoaderOption func(*CatalogLoader)

// WithLoadClock sets the clock used to pick defaults from validity windows.
func WithLoadClock(now func() time.Time) LoaderOption {
	return func(l *CatalogLoader) { l.now = now }
}

// NewCatalogLoader creates a new catalog loader.
func NewCatalogLoader(opts ...LoaderOption) *CatalogLoader {
	l := &CatalogLoader{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDefault loads the catalog compiled into the binary.
func (l *CatalogLoader) LoadDefault() (*Catalog, error) {
	return l.LoadFromReader(strings.NewReader(string(defaultCatalog)))
}

// Load loads a catalog from a YAML file.
func (l *CatalogLoader) Load(path string) (*Catalog, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, apperrors.NewConfigurationError("catalog", "failed to open catalog directory", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, apperrors.NewConfigurationError("catalog", "failed to open catalog", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadFromReader(file)
}

// LoadFromReader loads a catalog from an io.Reader. Defaults missing from the
// file are computed once here, against the loader clock.
func (l *CatalogLoader) LoadFromReader(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, apperrors.NewConfigurationError("catalog", "failed to decode catalog YAML", err)
	}
	if len(file.Families) == 0 {
		return nil, apperrors.NewConfigurationError("catalog", "catalog declares no families", nil)
	}

	defs := make([]profiles.FamilyDefinition, 0, len(file.Families))
	for _, entry := range file.Families {
		def, err := l.familyDefinition(entry)
		if err != nil {
			return nil, apperrors.NewConfigurationError("catalog", fmt.Sprintf("family %q", entry.Name), err)
		}
		defs = append(defs, def)
	}
	reg, err := profiles.NewRegistry(defs...)
	if err != nil {
		return nil, apperrors.NewConfigurationError("catalog", "invalid catalog", err)
	}

	rules := make([]builder.Rule, 0, len(file.Rules))
	for _, entry := range file.Rules {
		rule, err := builder.CompileRule(builder.RuleDefinition{
			Kind:    entry.Kind,
			Name:    entry.Name,
			Fields:  entry.Fields,
			When:    entry.When,
			Expr:    entry.Expr,
			Message: entry.Message,
		})
		if err != nil {
			return nil, apperrors.NewConfigurationError("catalog", "invalid rule", err)
		}
		rules = append(rules, rule)
	}

	return &Catalog{Registry: reg, Rules: builder.NewRuleSet(rules...)}, nil
}

func (l *CatalogLoader) familyDefinition(entry familyEntry) (profiles.FamilyDefinition, error) {
	family, err := values.NewProfileFamily(entry.Name)
	if err != nil {
		return profiles.FamilyDefinition{}, err
	}

	def := profiles.FamilyDefinition{Family: family, Description: entry.Description}
	for _, ve := range entry.Versions {
		v, err := values.NewProfileVersion(ve.Version)
		if err != nil {
			return profiles.FamilyDefinition{}, err
		}
		vd := profiles.VersionDefinition{Version: v}
		if vd.ValidFrom, err = parseDate(ve.ValidFrom); err != nil {
			return profiles.FamilyDefinition{}, fmt.Errorf("version %s valid_from: %w", v, err)
		}
		if vd.ValidUntil, err = parseDate(ve.ValidUntil); err != nil {
			return profiles.FamilyDefinition{}, fmt.Errorf("version %s valid_until: %w", v, err)
		}
		if vd.ValidUntil != nil {
			end := vd.ValidUntil.Add(24*time.Hour - time.Nanosecond)
			vd.ValidUntil = &end
		}
		if vd.ValidFrom != nil && vd.ValidUntil != nil && vd.ValidUntil.Before(*vd.ValidFrom) {
			return profiles.FamilyDefinition{}, fmt.Errorf("version %s: validity window ends before it starts", v)
		}
		def.Versions = append(def.Versions, vd)
	}

	if entry.Default != "" {
		if def.Default, err = values.NewProfileVersion(entry.Default); err != nil {
			return profiles.FamilyDefinition{}, fmt.Errorf("default: %w", err)
		}
		return def, nil
	}
	if len(def.Versions) == 0 {
		return def, nil // rejected by the registry
	}
	if def.Default, err = profiles.SelectDefault(def.Versions, l.now()); err != nil {
		return profiles.FamilyDefinition{}, err
	}
	return def, nil
}

// parseDate parses an optional YYYY-MM-DD date in UTC.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
