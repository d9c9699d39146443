package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/reglet-dev/rxforge/internal/application/ports"
)

// ViperToggleSource reads profile toggles ("profiles.<family>") from viper,
// so they can come from the config file or RXFORGE_PROFILES_<FAMILY>.
type ViperToggleSource struct {
	v *viper.Viper
}

var _ ports.ToggleSource = (*ViperToggleSource)(nil)

// NewViperToggleSource wraps v; nil means the global viper instance.
func NewViperToggleSource(v *viper.Viper) *ViperToggleSource {
	if v == nil {
		v = viper.GetViper()
	}
	return &ViperToggleSource{v: v}
}

// Lookup returns the toggle value for key if it is set and not blank.
func (s *ViperToggleSource) Lookup(key string) (string, bool) {
	if !s.v.IsSet(key) {
		return "", false
	}
	value := strings.TrimSpace(s.v.GetString(key))
	return value, value != ""
}

// StaticToggleSource is a fixed set of toggles, keyed like the viper source.
type StaticToggleSource map[string]string

var _ ports.ToggleSource = StaticToggleSource(nil)

// Lookup returns the toggle value for key.
func (s StaticToggleSource) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}
