package builder

import (
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

type outcomeState struct {
	issues []document.OutcomeIssue
}

var outcomeInvariants = invariants[outcomeState]{
	required("issue-required", "issue", "an operation outcome needs at least one issue", func(s *outcomeState) bool {
		return len(s.issues) > 0
	}),
	required("issue-severity-valid", "severity", "every issue needs a known severity", func(s *outcomeState) bool {
		for _, is := range s.issues {
			if is.Severity == "" {
				return false
			}
		}
		return true
	}),
}

// OperationOutcomeBuilder builds an operation outcome, usually an error report.
type OperationOutcomeBuilder struct {
	core[outcomeState]
}

func newOperationOutcomeBuilder(f *Factory) *OperationOutcomeBuilder {
	return &OperationOutcomeBuilder{core: newCore(f, document.KindOperationOutcome, outcomeInvariants, outcomeSnapshot)}
}

func outcomeSnapshot(s *outcomeState) map[string]any {
	codes := make([]any, len(s.issues))
	for i, is := range s.issues {
		codes[i] = is.Code
	}
	return map[string]any{"issues": len(s.issues), "codes": codes}
}

// Version selects the workflow profile version for this builder only.
func (b *OperationOutcomeBuilder) Version(v values.ProfileVersion) *OperationOutcomeBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *OperationOutcomeBuilder) ID(id values.ResourceID) *OperationOutcomeBuilder {
	b.setID(id)
	return b
}

// Issue adds an issue. code is an issue-type code such as "invalid" or "not-found".
func (b *OperationOutcomeBuilder) Issue(sev values.Severity, code, diagnostics string, expression ...string) *OperationOutcomeBuilder {
	b.set("Issue", func(s *outcomeState) {
		s.issues = append(s.issues, document.OutcomeIssue{
			Severity: sev.String(),
			Code:     strings.TrimSpace(code),
			Details: &document.CodeableConcept{Coding: []document.Coding{
				{System: document.SystemIssueType, Code: strings.TrimSpace(code)},
			}},
			Diagnostics: strings.TrimSpace(diagnostics),
			Expression:  append([]string(nil), expression...),
		})
	})
	return b
}

// Build checks the invariants and returns the stamped outcome.
func (b *OperationOutcomeBuilder) Build() (*document.OperationOutcome, error) {
	oo, err := b.build()
	return oo, b.observe(err)
}

func (b *OperationOutcomeBuilder) build() (*document.OperationOutcome, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}
	oo := &document.OperationOutcome{Issue: append([]document.OutcomeIssue(nil), b.state.issues...)}
	if err := b.complete(oo, v); err != nil {
		return nil, err
	}
	return oo, nil
}
