package builder

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// RuleEnv is the evaluation environment of rule expressions.
type RuleEnv struct {
	Fields  map[string]any `expr:"fields"`
	Version string         `expr:"version"`
}

// RuleDefinition is the uncompiled form of a catalog rule.
type RuleDefinition struct {
	Kind    string
	Name    string
	Fields  []string
	When    string
	Expr    string
	Message string
}

// Rule is a compiled expression invariant attached to a document kind.
type Rule struct {
	kind    document.Kind
	name    string
	fields  []string
	when    values.VersionRange
	message string
	program *vm.Program
}

// CompileRule validates and compiles a rule definition.
func CompileRule(def RuleDefinition) (Rule, error) {
	kind, ok := document.KindByName(def.Kind)
	if !ok || kind.IsAny() {
		return Rule{}, fmt.Errorf("rule %q: unknown kind %q", def.Name, def.Kind)
	}
	if strings.TrimSpace(def.Name) == "" {
		return Rule{}, fmt.Errorf("rule for kind %s has no name", def.Kind)
	}
	when, err := values.NewVersionRange(def.When)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", def.Name, err)
	}
	program, err := expr.Compile(def.Expr, expr.Env(RuleEnv{}), expr.AsBool())
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: invalid expression: %w", def.Name, err)
	}
	return Rule{
		kind:    kind,
		name:    def.Name,
		fields:  def.Fields,
		when:    when,
		message: def.Message,
		program: program,
	}, nil
}

// Name returns the rule name
func (r Rule) Name() string { return r.name }

// Kind returns the kind the rule applies to
func (r Rule) Kind() document.Kind { return r.kind }

func (r Rule) check(fields map[string]any, v values.ProfileVersion) error {
	if !r.when.Contains(v) {
		return nil
	}
	out, err := expr.Run(r.program, RuleEnv{Fields: fields, Version: v.String()})
	if err != nil {
		return &ConstructionError{
			Kind: r.kind, Version: v, Invariant: r.name, Fields: r.fields,
			Message: fmt.Sprintf("rule expression error: %v", err),
		}
	}
	if ok, _ := out.(bool); !ok {
		return &ConstructionError{Kind: r.kind, Version: v, Invariant: r.name, Fields: r.fields, Message: r.message}
	}
	return nil
}

// RuleSet groups compiled rules by kind, preserving declaration order.
type RuleSet struct {
	byKind map[document.Kind][]Rule
}

// NewRuleSet groups rules by kind.
func NewRuleSet(rules ...Rule) RuleSet {
	rs := RuleSet{byKind: make(map[document.Kind][]Rule)}
	for _, r := range rules {
		rs.byKind[r.kind] = append(rs.byKind[r.kind], r)
	}
	return rs
}

// For returns the rules of kind k.
func (rs RuleSet) For(k document.Kind) []Rule {
	return rs.byKind[k]
}

// Len returns the total number of rules.
func (rs RuleSet) Len() int {
	n := 0
	for _, rules := range rs.byKind {
		n += len(rules)
	}
	return n
}
