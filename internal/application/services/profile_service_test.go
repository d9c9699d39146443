package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	"github.com/reglet-dev/rxforge/internal/domain/profiles"
	domainservices "github.com/reglet-dev/rxforge/internal/domain/services"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

type mapToggles map[string]string

func (m mapToggles) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func testRegistry(t *testing.T) *profiles.Registry {
	t.Helper()
	until := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	mk := func(family values.ProfileFamily, def string, versions ...string) profiles.FamilyDefinition {
		d := profiles.FamilyDefinition{Family: family, Default: values.MustNewProfileVersion(def)}
		for _, v := range versions {
			d.Versions = append(d.Versions, profiles.VersionDefinition{Version: values.MustNewProfileVersion(v)})
		}
		return d
	}
	workflow := mk(values.FamilyWorkflow, "1.4.0", "1.3.0", "1.4.0")
	workflow.Description = "E-prescription workflow"
	workflow.Versions[0].ValidUntil = &until

	reg, err := profiles.NewRegistry(
		workflow,
		mk(values.FamilyPrescription, "1.1.0", "1.0.2", "1.1.0"),
		mk(values.FamilyBaseData, "1.1.0", "1.0.3", "1.1.0"),
		mk(values.FamilyMedication, "1.1.0", "1.0.0", "1.1.0"),
	)
	require.NoError(t, err)
	return reg
}

func Test_ProfileService_List(t *testing.T) {
	svc := NewProfileService(domainservices.NewProfileResolver(testRegistry(t), mapToggles{"profiles.workflow": "1.3"}))

	infos := svc.List()
	require.Len(t, infos, 4)

	wf := infos[0]
	assert.Equal(t, "workflow", wf.Family)
	assert.Equal(t, "E-prescription workflow", wf.Description)
	assert.Equal(t, "1.4.0", wf.Default)
	assert.Equal(t, "1.3.0", wf.Resolved)
	require.Len(t, wf.Versions, 2)
	require.NotNil(t, wf.Versions[0].ValidUntil)
	assert.Nil(t, wf.Versions[1].ValidUntil)

	assert.Equal(t, "1.1.0", infos[1].Resolved)
}

func Test_ProfileService_List_BadToggle(t *testing.T) {
	svc := NewProfileService(domainservices.NewProfileResolver(testRegistry(t), mapToggles{"profiles.medication": "9.9.9"}))

	for _, info := range svc.List() {
		if info.Family != "medication" {
			continue
		}
		assert.Empty(t, info.Resolved)
		assert.Contains(t, info.Error, "9.9.9")
	}
}

func Test_ProfileService_Resolve(t *testing.T) {
	svc := NewProfileService(domainservices.NewProfileResolver(testRegistry(t), nil))

	tests := []struct {
		name    string
		req     dto.ResolveRequest
		want    string
		wantErr string
	}{
		{"default", dto.ResolveRequest{Family: "prescription"}, "1.1.0", ""},
		{"explicit", dto.ResolveRequest{Family: "Prescription", Version: "1.0.2"}, "1.0.2", ""},
		{"undeclared", dto.ResolveRequest{Family: "prescription", Version: "2.0.0"}, "", "unknown explicit version"},
		{"malformed version", dto.ResolveRequest{Family: "prescription", Version: "x"}, "", "invalid version"},
		{"unknown family", dto.ResolveRequest{Family: "erezept"}, "", "unknown profile family"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(tt.req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
