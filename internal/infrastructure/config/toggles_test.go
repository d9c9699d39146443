package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestViperToggleSource_Lookup(t *testing.T) {
	v := viper.New()
	v.Set("profiles.workflow", " 1.4.0 ")
	v.Set("profiles.medication", "")

	src := NewViperToggleSource(v)

	got, ok := src.Lookup("profiles.workflow")
	assert.True(t, ok)
	assert.Equal(t, "1.4.0", got)

	_, ok = src.Lookup("profiles.medication")
	assert.False(t, ok)

	_, ok = src.Lookup("profiles.prescription")
	assert.False(t, ok)
}

func TestViperToggleSource_Environment(t *testing.T) {
	t.Setenv("RXFORGE_PROFILES_WORKFLOW", "9.9.9")

	v := viper.New()
	v.SetEnvPrefix("RXFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	src := NewViperToggleSource(v)

	got, ok := src.Lookup("profiles.workflow")
	assert.True(t, ok)
	assert.Equal(t, "9.9.9", got)
}

func TestStaticToggleSource_Lookup(t *testing.T) {
	src := StaticToggleSource{"profiles.workflow": "1.3.0"}

	got, ok := src.Lookup("profiles.workflow")
	assert.True(t, ok)
	assert.Equal(t, "1.3.0", got)

	_, ok = src.Lookup("profiles.medication")
	assert.False(t, ok)
}
