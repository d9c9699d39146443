package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Identifiers(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) error
		valid   []string
		invalid []string
	}{
		{
			name:    "KVNR",
			parse:   func(s string) error { _, err := NewKVNR(s); return err },
			valid:   []string{"X110407071", "A123456789"},
			invalid: []string{"", "x110407071", "X11040707", "1234567890"},
		},
		{
			name:    "IKNR",
			parse:   func(s string) error { _, err := NewIKNR(s); return err },
			valid:   []string{"104212059", "109500969"},
			invalid: []string{"", "10421205", "10421205A"},
		},
		{
			name:    "PZN",
			parse:   func(s string) error { _, err := NewPZN(s); return err },
			valid:   []string{"04773414", "17377588"},
			invalid: []string{"", "04773415", "0477341", "abcdefgh"},
		},
		{
			name:    "LANR",
			parse:   func(s string) error { _, err := NewLANR(s); return err },
			valid:   []string{"838382202"},
			invalid: []string{"", "83838220"},
		},
		{
			name:    "PrescriptionID",
			parse:   func(s string) error { _, err := NewPrescriptionID(s); return err },
			valid:   []string{"160.000.100.000.001.05", "200.100.000.000.081.90"},
			invalid: []string{"", "160.000.100.000.001", "160-000-100-000-001-05"},
		},
		{
			name:    "TelematikID",
			parse:   func(s string) error { _, err := NewTelematikID(s); return err },
			valid:   []string{"3-SMC-B-Testkarte-883110000116873", "1-20014"},
			invalid: []string{"", "SMC-B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.valid {
				assert.NoError(t, tt.parse(s), s)
			}
			for _, s := range tt.invalid {
				assert.Error(t, tt.parse(s), s)
			}
		})
	}
}

func Test_PrescriptionID_FlowType(t *testing.T) {
	id := MustNewPrescriptionID("209.100.000.000.001.05")
	assert.Equal(t, "209", id.FlowType())
	assert.True(t, id.Equals(MustNewPrescriptionID("209.100.000.000.001.05")))
	assert.Equal(t, "", PrescriptionID{}.FlowType())
}

func Test_MustNewPZN_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNewPZN("04773415") })
}

func Test_Reference(t *testing.T) {
	id := NewResourceID()
	ref := InternalReference(id)

	assert.False(t, ref.IsExternal())
	assert.Equal(t, id.URN(), ref.String())
	assert.True(t, ref.Points(id))
	assert.False(t, ref.Points(NewResourceID()))

	parsed, err := ParseReference(ref.String())
	require.NoError(t, err)
	assert.True(t, parsed.Points(id))

	ext, err := ParseReference("Task/160.000.100.000.001.05")
	require.NoError(t, err)
	assert.True(t, ext.IsExternal())
	_, ok := ext.Target()
	assert.False(t, ok)

	_, err = NewExternalReference("  ")
	assert.Error(t, err)
}

func Test_ResourceID(t *testing.T) {
	id := NewResourceID()
	assert.False(t, id.IsZero())

	fromURN, err := ParseResourceID(id.URN())
	require.NoError(t, err)
	assert.True(t, id.Equals(fromURN))

	_, err = ParseResourceID("not-a-uuid")
	assert.Error(t, err)
	assert.True(t, ResourceID{}.IsZero())
}

func Test_ProfileFamily(t *testing.T) {
	f, err := NewProfileFamily(" Workflow ")
	require.NoError(t, err)
	assert.True(t, f.Equals(FamilyWorkflow))
	assert.Equal(t, "profiles.workflow", f.ToggleKey())

	_, err = NewProfileFamily("")
	assert.Error(t, err)
	_, err = NewProfileFamily("has space")
	assert.Error(t, err)
}
