package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

func TestSARIFFormatter_Format(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	formatter := NewSARIFFormatter(&buf, "0.1.0")
	require.NoError(t, formatter.Format(createTestResponse()))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))

	assert.Equal(t, "2.1.0", raw["version"])
	assert.Contains(t, raw, "$schema")
	assert.Contains(t, raw, "runs")

	runs := raw["runs"].([]interface{})
	require.Len(t, runs, 1)

	run := runs[0].(map[string]interface{})
	assert.Contains(t, run, "tool")
	assert.Contains(t, run, "results")
	assert.Contains(t, run, "invocations")
}

func TestSARIFFormatter_ValidatesAgainstSchema(t *testing.T) {
	t.Parallel()
	report := formatToReport(t, createTestResponse())
	require.NoError(t, report.Validate())
}

func TestSARIFFormatter_ToolMetadata(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	formatter := NewSARIFFormatter(&buf, "1.2.3")
	require.NoError(t, formatter.Format(createTestResponse()))

	report, err := sarif.FromBytes(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)

	tool := report.Runs[0].Tool
	assert.Equal(t, "rxforge", *tool.Driver.Name)
	assert.Equal(t, "1.2.3", *tool.Driver.Version)
	assert.Equal(t, "https://github.com/reglet-dev/rxforge", *tool.Driver.InformationURI)
	assert.Len(t, tool.Driver.Rules, len(sarifRules))
}

func TestSARIFFormatter_Results(t *testing.T) {
	t.Parallel()
	report := formatToReport(t, createTestResponse())
	results := report.Runs[0].Results

	// one information message, two messages of the invalid document, one decode failure
	require.Len(t, results, 4)

	tests := []struct {
		level string
		kind  string
	}{
		{"note", "informational"},
		{"error", "fail"},
		{"warning", "review"},
		{"error", "fail"},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.level, results[i].Level, "result %d level", i)
		assert.Equal(t, tc.kind, results[i].Kind, "result %d kind", i)
	}

	assert.Equal(t, "/dispenseRequest/quantity/value: must be >= 1", *results[1].Message.Text)
	assert.Equal(t, "/dispenseRequest/quantity/value", results[1].Properties.Properties["pointer"])
	assert.Equal(t, "MedicationRequest", results[1].Properties.Properties["kind"])
}

func TestSARIFFormatter_SeverityMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		severity  values.Severity
		wantLevel string
		wantKind  string
	}{
		{"fatal", values.SevFatal, "error", "fail"},
		{"error", values.SevError, "error", "fail"},
		{"warning", values.SevWarning, "warning", "review"},
		{"information", values.SevInformation, "note", "informational"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &dto.ValidateResponse{Reports: []dto.DocumentReport{{
				Path:     "doc.json",
				Valid:    !tc.severity.IsFailure(),
				Messages: []validation.Message{{Severity: tc.severity, Text: "test message"}},
			}}}

			report := formatToReport(t, resp)
			require.Len(t, report.Runs[0].Results, 1)

			res := report.Runs[0].Results[0]
			assert.Equal(t, tc.wantLevel, res.Level, "level mismatch")
			assert.Equal(t, tc.wantKind, res.Kind, "kind mismatch")
			assert.Equal(t, "test message", *res.Message.Text)
		})
	}
}

func TestSARIFFormatter_ValidDocumentPasses(t *testing.T) {
	t.Parallel()
	resp := &dto.ValidateResponse{Reports: []dto.DocumentReport{{Path: "doc.json", Kind: "Patient", Valid: true}}}

	report := formatToReport(t, resp)
	require.Len(t, report.Runs[0].Results, 1)
	res := report.Runs[0].Results[0]
	assert.Equal(t, "pass", res.Kind)
	assert.Equal(t, "none", res.Level)
}

func TestSARIFMapper_ArtifactRegistration_Deduplication(t *testing.T) {
	t.Parallel()
	resp := &dto.ValidateResponse{Reports: []dto.DocumentReport{
		{Path: "/same/file.json", Messages: []validation.Message{
			{Severity: values.SevError, Text: "a"},
			{Severity: values.SevError, Text: "b"},
		}},
	}}

	report := formatToReport(t, resp)
	run := report.Runs[0]
	assert.Len(t, run.Results, 2)
	assert.Len(t, run.Artifacts, 1, "Artifacts should be deduplicated")
	assert.Equal(t, "file:///same/file.json", *run.Artifacts[0].Location.URI)
}

func TestSARIFMapper_ArtifactLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"resourceType":"Patient"}`), 0o600))

	resp := &dto.ValidateResponse{Reports: []dto.DocumentReport{{Path: path, Kind: "Patient", Valid: true}}}

	report := formatToReport(t, resp)
	artifact := report.Runs[0].Artifacts[0]
	assert.Equal(t, 26, artifact.Length)
	assert.Equal(t, "Patient", artifact.Properties.Properties["kind"])
	assert.Equal(t, true, artifact.Properties.Properties["valid"])
}

func TestSARIFMapper_LocationNormalization_Relative(t *testing.T) {
	t.Parallel()

	cwd, err := filepath.Abs(".")
	require.NoError(t, err)
	target := filepath.Join(cwd, "test-file.json")

	resp := &dto.ValidateResponse{Reports: []dto.DocumentReport{{Path: target, Valid: true}}}

	report := formatToReport(t, resp)
	loc := report.Runs[0].Results[0].Locations[0]
	assert.Equal(t, "test-file.json", *loc.PhysicalLocation.ArtifactLocation.URI)
}

func TestSARIFMapper_EmptyResults(t *testing.T) {
	t.Parallel()
	report := formatToReport(t, &dto.ValidateResponse{})
	assert.Empty(t, report.Runs[0].Results)
	assert.Empty(t, report.Runs[0].Artifacts)
}

func TestSARIFMapper_Invocation(t *testing.T) {
	t.Parallel()
	report := formatToReport(t, createTestResponse())
	require.Len(t, report.Runs[0].Invocations, 1)

	inv := report.Runs[0].Invocations[0]
	require.NotNil(t, inv.ExecutionSuccessful)
	assert.False(t, *inv.ExecutionSuccessful, "decode failures make the invocation unsuccessful")
	require.NotNil(t, inv.EndTimeUtc)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", *inv.EndTimeUtc)
	assert.Equal(t, "2025-03-01T11:59:59.958Z", *inv.StartTimeUtc)
}

// Helper to format a response to a Report
func formatToReport(t *testing.T, resp *dto.ValidateResponse) *sarif.Report {
	var buf bytes.Buffer
	formatter := NewSARIFFormatter(&buf, "")
	require.NoError(t, formatter.Format(resp))

	report, err := sarif.FromBytes(buf.Bytes())
	require.NoError(t, err)
	return report
}
