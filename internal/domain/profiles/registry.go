// Package profiles holds the immutable catalog of declared profile versions per family.
package profiles

import (
	"fmt"
	"slices"
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// VersionDefinition declares one version of a family with an optional validity window.
type VersionDefinition struct {
	Version    values.ProfileVersion
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// ValidAt reports whether t falls into the validity window (bounds inclusive).
// A missing bound is open.
func (d VersionDefinition) ValidAt(t time.Time) bool {
	if d.ValidFrom != nil && t.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && t.After(*d.ValidUntil) {
		return false
	}
	return true
}

// FamilyDefinition declares a family, its versions and its default version.
type FamilyDefinition struct {
	Family      values.ProfileFamily
	Description string
	Versions    []VersionDefinition
	Default     values.ProfileVersion
}

// VersionList returns the declared versions in ascending order.
func (d FamilyDefinition) VersionList() []values.ProfileVersion {
	out := make([]values.ProfileVersion, len(d.Versions))
	for i, v := range d.Versions {
		out[i] = v.Version
	}
	return out
}

// Registry is the ordered, immutable set of declared versions per family.
// It is safe for concurrent use.
type Registry struct {
	families map[string]FamilyDefinition
	order    []values.ProfileFamily
}

// NewRegistry validates and freezes the given family definitions.
//
// Every family needs at least one version, versions must be unique and the
// default must be one of the declared versions.
func NewRegistry(defs ...FamilyDefinition) (*Registry, error) {
	r := &Registry{families: make(map[string]FamilyDefinition, len(defs))}

	for _, def := range defs {
		if def.Family.IsEmpty() {
			return nil, fmt.Errorf("family definition without a name")
		}
		if _, dup := r.families[def.Family.String()]; dup {
			return nil, fmt.Errorf("family %s declared twice", def.Family)
		}
		if len(def.Versions) == 0 {
			return nil, fmt.Errorf("family %s declares no versions", def.Family)
		}

		versions := slices.Clone(def.Versions)
		slices.SortFunc(versions, func(a, b VersionDefinition) int {
			return a.Version.Compare(b.Version)
		})
		for i := range versions {
			if versions[i].Version.IsZero() {
				return nil, fmt.Errorf("family %s declares an empty version", def.Family)
			}
			if i > 0 && versions[i].Version.Equals(versions[i-1].Version) {
				return nil, fmt.Errorf("family %s declares version %s twice", def.Family, versions[i].Version)
			}
		}

		frozen := FamilyDefinition{
			Family:      def.Family,
			Description: def.Description,
			Versions:    versions,
			Default:     def.Default,
		}
		if !frozen.declares(def.Default) {
			return nil, fmt.Errorf("default version %q of family %s is not declared", def.Default.String(), def.Family)
		}

		r.families[def.Family.String()] = frozen
		r.order = append(r.order, def.Family)
	}

	return r, nil
}

// MustNewRegistry creates a registry or panics
func MustNewRegistry(defs ...FamilyDefinition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (d FamilyDefinition) declares(v values.ProfileVersion) bool {
	for _, declared := range d.Versions {
		if declared.Version.Equals(v) {
			return true
		}
	}
	return false
}

// Families returns the families in declaration order.
func (r *Registry) Families() []values.ProfileFamily {
	return slices.Clone(r.order)
}

// Family returns the definition of a family.
func (r *Registry) Family(f values.ProfileFamily) (FamilyDefinition, bool) {
	def, ok := r.families[f.String()]
	if !ok {
		return FamilyDefinition{}, false
	}
	def.Versions = slices.Clone(def.Versions)
	return def, true
}

// Versions returns the declared versions of a family in ascending order.
func (r *Registry) Versions(f values.ProfileFamily) []values.ProfileVersion {
	def, ok := r.families[f.String()]
	if !ok {
		return nil
	}
	return def.VersionList()
}

// Default returns the family's default version.
func (r *Registry) Default(f values.ProfileFamily) (values.ProfileVersion, bool) {
	def, ok := r.families[f.String()]
	if !ok {
		return values.ProfileVersion{}, false
	}
	return def.Default, true
}

// Declares reports whether v is a declared version of f.
func (r *Registry) Declares(f values.ProfileFamily, v values.ProfileVersion) bool {
	def, ok := r.families[f.String()]
	return ok && def.declares(v)
}

// Lookup parses s and returns the matching declared version of f.
func (r *Registry) Lookup(f values.ProfileFamily, s string) (values.ProfileVersion, bool) {
	v, err := values.NewProfileVersion(s)
	if err != nil {
		return values.ProfileVersion{}, false
	}
	if !r.Declares(f, v) {
		return values.ProfileVersion{}, false
	}
	return v, true
}

// Compare orders two versions of the same family.
func (r *Registry) Compare(a, b values.ProfileVersion) int {
	return a.Compare(b)
}

// SelectDefault picks the default version for a family that does not name one:
// the newest version valid at now, or the only declared version.
func SelectDefault(versions []VersionDefinition, now time.Time) (values.ProfileVersion, error) {
	if len(versions) == 1 {
		return versions[0].Version, nil
	}

	var best values.ProfileVersion
	for _, v := range versions {
		if v.ValidAt(now) && v.Version.GreaterThan(best) {
			best = v.Version
		}
	}
	if best.IsZero() {
		return values.ProfileVersion{}, fmt.Errorf("no version is valid at %s", now.Format(time.DateOnly))
	}
	return best, nil
}
