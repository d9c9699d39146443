package services

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/profiles"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// ToggleSource reads process-wide configuration values such as "profiles.workflow".
type ToggleSource interface {
	Lookup(key string) (string, bool)
}

// UnknownVersionError indicates a version that the family does not declare.
type UnknownVersionError struct {
	Family   values.ProfileFamily
	Version  string
	Source   string // "explicit", "toggle" or "" for an unknown family
	Declared []values.ProfileVersion
}

func (e *UnknownVersionError) Error() string {
	if len(e.Declared) == 0 {
		return fmt.Sprintf("unknown profile family %q", e.Family.String())
	}
	declared := make([]string, len(e.Declared))
	for i, v := range e.Declared {
		declared[i] = v.String()
	}
	return fmt.Sprintf("unknown %s version %q for family %s (declared: %s)",
		e.Source, e.Version, e.Family, strings.Join(declared, ", "))
}

// ResolveVersion is the pure resolution rule: an explicit version wins, then
// the toggle value, then the family default.
func ResolveVersion(
	reg *profiles.Registry,
	family values.ProfileFamily,
	explicit *values.ProfileVersion,
	toggle string,
	toggleSet bool,
) (values.ProfileVersion, error) {
	def, ok := reg.Family(family)
	if !ok {
		return values.ProfileVersion{}, &UnknownVersionError{Family: family}
	}

	if explicit != nil && !explicit.IsZero() {
		if !reg.Declares(family, *explicit) {
			return values.ProfileVersion{}, &UnknownVersionError{
				Family: family, Version: explicit.String(), Source: "explicit", Declared: def.VersionList(),
			}
		}
		return *explicit, nil
	}

	if toggleSet && strings.TrimSpace(toggle) != "" {
		v, ok := reg.Lookup(family, toggle)
		if !ok {
			return values.ProfileVersion{}, &UnknownVersionError{
				Family: family, Version: toggle, Source: "toggle", Declared: def.VersionList(),
			}
		}
		return v, nil
	}

	return def.Default, nil
}

// ProfileResolver decides which version of a family applies to a build.
// It reads the toggle once per call and holds no mutable state, so it is
// safe for concurrent use.
type ProfileResolver struct {
	registry *profiles.Registry
	toggles  ToggleSource
}

// NewProfileResolver creates a resolver. A nil toggle source means no toggles are set.
func NewProfileResolver(reg *profiles.Registry, toggles ToggleSource) *ProfileResolver {
	return &ProfileResolver{registry: reg, toggles: toggles}
}

// Resolve returns the version to use for family.
func (r *ProfileResolver) Resolve(family values.ProfileFamily, explicit *values.ProfileVersion) (values.ProfileVersion, error) {
	var (
		toggle    string
		toggleSet bool
	)
	if r.toggles != nil && (explicit == nil || explicit.IsZero()) {
		toggle, toggleSet = r.toggles.Lookup(family.ToggleKey())
	}
	return ResolveVersion(r.registry, family, explicit, toggle, toggleSet)
}

// Registry returns the registry the resolver works on.
func (r *ProfileResolver) Registry() *profiles.Registry {
	return r.registry
}
