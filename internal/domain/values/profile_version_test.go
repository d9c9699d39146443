package values

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewProfileVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"full", "1.1.0", "1.1.0", false},
		{"two components padded", "1.1", "1.1.0", false},
		{"whitespace", " 1.4.0 ", "1.4.0", false},
		{"empty", "", "", true},
		{"garbage", "abc", "", true},
		{"prerelease rejected", "1.2.0-rc1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewProfileVersion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func Test_ExtractProfileVersion(t *testing.T) {
	v, err := ExtractProfileVersion("https://fhir.kbv.de/StructureDefinition/KBV_PR_ERP_Bundle|1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", v.String())

	v, err = ExtractProfileVersion("kbv.ita.erp 1.0.2")
	require.NoError(t, err)
	assert.Equal(t, "1.0.2", v.String())

	_, err = ExtractProfileVersion("no version here")
	assert.Error(t, err)
}

func Test_ProfileVersion_Compare(t *testing.T) {
	v102 := MustNewProfileVersion("1.0.2")
	v110 := MustNewProfileVersion("1.1")
	v120 := MustNewProfileVersion("1.2.0")

	assert.True(t, v102.LessThan(v110))
	assert.True(t, v120.GreaterThan(v110))
	assert.True(t, v110.Equals(MustNewProfileVersion("1.1.0")))
	assert.True(t, v110.AtLeast(v110))
	assert.False(t, v102.AtLeast(v110))
	assert.True(t, ProfileVersion{}.LessThan(v102))
	assert.Equal(t, 0, ProfileVersion{}.Compare(ProfileVersion{}))

	versions := []ProfileVersion{v120, v102, v110}
	sort.Slice(versions, func(i, j int) bool { return versions[i].LessThan(versions[j]) })
	assert.Equal(t, []string{"1.0.2", "1.1.0", "1.2.0"}, []string{versions[0].String(), versions[1].String(), versions[2].String()})
}

func Test_ProfileVersion_JSON(t *testing.T) {
	original := MustNewProfileVersion("1.3.0")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"1.3.0"`, string(data))

	var decoded ProfileVersion
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equals(decoded))
}

func Test_ProfileVersion_UnmarshalJSON_NonStrings(t *testing.T) {
	var holder struct {
		Version ProfileVersion `json:"version"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"version":null}`), &holder))
	assert.True(t, holder.Version.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"version":""}`), &holder))
	assert.True(t, holder.Version.IsZero())

	var v ProfileVersion
	require.NoError(t, v.UnmarshalJSON([]byte("null")))
	assert.True(t, v.IsZero())

	for _, raw := range []string{"123", "1.1", "true", `{}`, `"ul"`} {
		assert.Error(t, v.UnmarshalJSON([]byte(raw)), raw)
	}
}

func Test_VersionRange_Contains(t *testing.T) {
	tests := []struct {
		rng      string
		version  string
		contains bool
	}{
		{"< 1.1.0", "1.0.2", true},
		{"< 1.1.0", "1.1.0", false},
		{">= 1.1.0", "1.1.0", true},
		{">= 1.1.0", "1.2.0", true},
		{">= 1.2.0, < 1.4.0", "1.3.0", true},
		{">= 1.2.0, < 1.4.0", "1.4.0", false},
		{"*", "9.9.9", true},
		{"", "0.0.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.rng+" "+tt.version, func(t *testing.T) {
			r := MustNewVersionRange(tt.rng)
			assert.Equal(t, tt.contains, r.Contains(MustNewProfileVersion(tt.version)))
		})
	}
}

func Test_VersionRange_Invalid(t *testing.T) {
	_, err := NewVersionRange(">>> nope")
	assert.Error(t, err)
	assert.False(t, MustNewVersionRange(">= 1.0.0").Contains(ProfileVersion{}))
	assert.True(t, AnyVersion.Contains(ProfileVersion{}))
}

func Test_ProfileID(t *testing.T) {
	id, err := NewProfileID("https://fhir.kbv.de/StructureDefinition/KBV_PR_ERP_Bundle", MustNewProfileVersion("1.1.0"))
	require.NoError(t, err)
	assert.Equal(t, "https://fhir.kbv.de/StructureDefinition/KBV_PR_ERP_Bundle|1.1.0", id.String())

	parsed, err := ParseProfileID(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	bare, err := ParseProfileID("https://example.org/StructureDefinition/Thing")
	require.NoError(t, err)
	assert.True(t, bare.Version().IsZero())

	_, err = NewProfileID("not a url", MustNewProfileVersion("1.0.0"))
	assert.Error(t, err)
	_, err = NewProfileID("https://example.org/x", ProfileVersion{})
	assert.Error(t, err)
}

func FuzzNewProfileVersion(f *testing.F) {
	seeds := []string{"1.1.0", "1.1", "v2", "0.0.0", "99999999999999999999.0.0", "1.2.3-rc.1+meta", "", "\xff"}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, s string) {
		v, err := NewProfileVersion(s)
		if err != nil {
			return
		}
		again, err := NewProfileVersion(v.String())
		if err != nil {
			t.Fatalf("canonical form %q does not parse: %v", v.String(), err)
		}
		if !again.Equals(v) {
			t.Fatalf("canonical form changed: %s != %s", again, v)
		}
	})
}
