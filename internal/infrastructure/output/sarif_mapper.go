package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// Rule ids reported by the SARIF formatter.
const (
	ruleDecode      = "decode-failure"
	ruleError       = "validation-error"
	ruleWarning     = "validation-warning"
	ruleInformation = "validation-information"
)

type sarifRule struct {
	id          string
	name        string
	description string
	level       string
}

var sarifRules = []sarifRule{
	{ruleDecode, "DecodeFailure", "The payload could not be decoded as a document.", "error"},
	{ruleError, "ValidationError", "The document violates its resource schema or profile.", "error"},
	{ruleWarning, "ValidationWarning", "The document is valid but deviates from its profile.", "warning"},
	{ruleInformation, "ValidationInformation", "Informational finding about the document.", "note"},
}

type sarifMapper struct {
	resp      *dto.ValidateResponse
	cwd       string                     // Current working directory
	artifacts map[string]*sarif.Artifact // Deduplicated artifacts
	order     []string
}

func newSARIFMapper(resp *dto.ValidateResponse) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		resp:      resp,
		cwd:       cwd,
		artifacts: make(map[string]*sarif.Artifact),
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts, and invocations.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifacts(run)
	m.addInvocation(run)
	m.addProperties(run)
}

func (m *sarifMapper) addRules(run *sarif.Run) {
	for _, r := range sarifRules {
		rule := sarif.NewReportingDescriptor().WithID(r.id)
		rule.WithName(r.name)

		desc := r.description
		rule.WithShortDescription(&sarif.MultiformatMessageString{
			Text: &desc,
		})
		rule.WithFullDescription(&sarif.MultiformatMessageString{
			Text: &desc,
		})
		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: r.level,
		})

		run.Tool.Driver.AddRule(rule)
	}
}

// addResults converts each report into one result per finding. Valid
// documents without findings produce a single passing result.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, rep := range m.resp.Reports {
		loc := m.createLocation(rep)

		if rep.Error != "" {
			result := sarif.NewRuleResult(ruleDecode)
			result.Level = "error"
			result.Kind = "fail"
			result.Message = sarif.NewTextMessage(rep.Error)
			result.Locations = []*sarif.Location{loc}
			run.AddResult(result)
			continue
		}

		if len(rep.Messages) == 0 {
			result := sarif.NewRuleResult(ruleError)
			result.Level = "none"
			result.Kind = "pass"
			result.Message = sarif.NewTextMessage(fmt.Sprintf("%s is valid", rep.Path))
			result.Locations = []*sarif.Location{loc}
			run.AddResult(result)
			continue
		}

		for _, msg := range rep.Messages {
			run.AddResult(m.mapMessage(rep, msg, loc))
		}
	}
}

func (m *sarifMapper) mapMessage(rep dto.DocumentReport, msg validation.Message, loc *sarif.Location) *sarif.Result {
	result := sarif.NewRuleResult(ruleForSeverity(msg.Severity))
	result.Level = m.mapSeverityToLevel(msg.Severity)
	result.Kind = "fail"
	if !msg.Severity.IsFailure() {
		result.Kind = "review"
	}
	if msg.Severity.Equals(values.SevInformation) {
		result.Kind = "informational"
	}

	text := msg.Text
	if msg.Location != "" {
		text = fmt.Sprintf("%s: %s", msg.Location, msg.Text)
	}
	result.Message = sarif.NewTextMessage(text)
	result.Locations = []*sarif.Location{loc}

	props := sarif.NewPropertyBag()
	props.Add("severity", msg.Severity.String())
	if msg.Location != "" {
		props.Add("pointer", msg.Location)
	}
	if rep.Kind != "" {
		props.Add("kind", rep.Kind)
	}
	result.WithProperties(props)
	return result
}

func ruleForSeverity(s values.Severity) string {
	switch {
	case s.IsFailure():
		return ruleError
	case s.Equals(values.SevWarning):
		return ruleWarning
	default:
		return ruleInformation
	}
}

// mapSeverityToLevel converts a message severity to a SARIF level.
func (m *sarifMapper) mapSeverityToLevel(s values.Severity) string {
	switch {
	case s.IsFailure():
		return "error"
	case s.Equals(values.SevWarning):
		return "warning"
	default:
		return "note"
	}
}

func (m *sarifMapper) createLocation(rep dto.DocumentReport) *sarif.Location {
	uri := m.normalizeURI(rep.Path)
	m.registerArtifact(uri, rep)

	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))
	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path) // Fallback to original
	}

	// Try to make relative to CWD
	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// registerArtifact adds a document to the artifacts map (deduplicated).
func (m *sarifMapper) registerArtifact(uri string, rep dto.DocumentReport) {
	if _, exists := m.artifacts[uri]; exists {
		return
	}

	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(uri))

	if absPath, err := filepath.Abs(rep.Path); err == nil {
		if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
			artifact.WithLength(int(info.Size()))
		}
	}

	props := sarif.NewPropertyBag()
	if rep.Kind != "" {
		props.Add("kind", rep.Kind)
	}
	if rep.Profile != "" {
		props.Add("profile", rep.Profile)
	}
	props.Add("valid", rep.Valid)
	artifact.WithProperties(props)

	m.artifacts[uri] = artifact
	m.order = append(m.order, uri)
}

// addArtifacts adds collected artifacts to the run in report order.
func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	for _, uri := range m.order {
		run.AddArtifact(m.artifacts[uri])
	}
}

// addInvocation adds execution metadata to the run.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	decodeFailures := 0
	for _, rep := range m.resp.Reports {
		if rep.Error != "" {
			decodeFailures++
		}
	}
	invocation.ExecutionSuccessful = ptrBool(decodeFailures == 0)

	if end := m.resp.Metadata.ProcessedAt; !end.IsZero() {
		start := end.Add(-m.resp.Metadata.Duration).UTC().Format("2006-01-02T15:04:05.000Z")
		finish := end.UTC().Format("2006-01-02T15:04:05.000Z")
		invocation.StartTimeUtc = &start
		invocation.EndTimeUtc = &finish
	}

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	if m.resp.Metadata.RequestID != "" {
		props := sarif.NewPropertyBag()
		props.Add("requestId", m.resp.Metadata.RequestID)
		invocation.WithProperties(props)
	}

	run.AddInvocation(invocation)
}

// addProperties adds summary statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	valid := 0
	for _, rep := range m.resp.Reports {
		if rep.Valid {
			valid++
		}
	}
	props := sarif.NewPropertyBag()
	props.Add("summary", map[string]int{
		"documents": len(m.resp.Reports),
		"valid":     valid,
		"invalid":   len(m.resp.Reports) - valid,
	})
	run.WithProperties(props)
}

func ptrBool(b bool) *bool {
	return &b
}
