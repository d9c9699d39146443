package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Severity
		wantErr bool
	}{
		{"information", "information", SevInformation, false},
		{"info alias", "info", SevInformation, false},
		{"warning", "warning", SevWarning, false},
		{"error", "error", SevError, false},
		{"fatal", "fatal", SevFatal, false},
		{"uppercase", "ERROR", SevError, false},
		{"whitespace", "  warning  ", SevWarning, false},
		{"empty", "", SevUnknown, false},
		{"invalid", "critical", Severity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, err := NewSeverity(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, sev.Equals(tt.want))
			}
		})
	}
}

func Test_Severity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SevInformation, "information"},
		{SevWarning, "warning"},
		{SevError, "error"},
		{SevFatal, "fatal"},
		{SevUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func Test_Severity_Comparison(t *testing.T) {
	tests := []struct {
		name     string
		sev1     Severity
		sev2     Severity
		isHigher bool
		isEqual  bool
	}{
		{"fatal > error", SevFatal, SevError, true, false},
		{"error > warning", SevError, SevWarning, true, false},
		{"warning > information", SevWarning, SevInformation, true, false},
		{"warning == warning", SevWarning, SevWarning, false, true},
		{"information < error", SevInformation, SevError, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isHigher, tt.sev1.IsHigherThan(tt.sev2))
			assert.Equal(t, tt.isEqual, tt.sev1.Equals(tt.sev2))
			if tt.isHigher || tt.isEqual {
				assert.True(t, tt.sev1.IsHigherOrEqual(tt.sev2))
			}
		})
	}
}

func Test_Severity_IsFailure(t *testing.T) {
	assert.False(t, SevInformation.IsFailure())
	assert.False(t, SevWarning.IsFailure())
	assert.True(t, SevError.IsFailure())
	assert.True(t, SevFatal.IsFailure())
}

func Test_Severity_JSON(t *testing.T) {
	original := SevError

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"error"`, string(data))

	var decoded Severity
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.True(t, original.Equals(decoded))
}
