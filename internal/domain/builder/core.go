package builder

import (
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// core is the engine shared by all builders: lifecycle, explicit version,
// state and ordered invariants.
type core[S any] struct {
	lifecycle
	factory    *Factory
	explicit   *values.ProfileVersion
	id         values.ResourceID
	state      S
	invariants invariants[S]
	extra      []FieldInvariant
	snapshot   func(s *S) map[string]any
}

func newCore[S any](f *Factory, kind document.Kind, list invariants[S], snapshot func(s *S) map[string]any) core[S] {
	return core[S]{
		lifecycle:  lifecycle{kind: kind},
		factory:    f,
		invariants: list,
		snapshot:   snapshot,
	}
}

// set applies a mutation, panicking with a UsageError once built.
func (c *core[S]) set(op string, mutate func(s *S)) {
	c.mutate(op)
	mutate(&c.state)
}

func (c *core[S]) setVersion(v values.ProfileVersion) {
	c.mutate("Version")
	c.explicit = v.Ptr()
}

func (c *core[S]) setID(id values.ResourceID) {
	c.mutate("ID")
	c.id = id
}

func (c *core[S]) addInvariant(inv FieldInvariant) {
	c.mutate("WithInvariant")
	c.extra = append(c.extra, inv)
}

// check resolves the version and evaluates the invariants.
func (c *core[S]) check() (values.ProfileVersion, error) {
	v, err := c.begin()
	if err != nil {
		return values.ProfileVersion{}, err
	}
	return v, c.evaluate(v)
}

// begin rejects a second build and resolves the version.
func (c *core[S]) begin() (values.ProfileVersion, error) {
	if err := c.beginBuild(); err != nil {
		return values.ProfileVersion{}, err
	}
	return c.factory.resolver.Resolve(c.kind.Family(), c.explicit)
}

// evaluate runs built-in invariants, extra invariants and catalog rules, in
// that order, stopping at the first failure.
func (c *core[S]) evaluate(v values.ProfileVersion) error {
	if err := c.invariants.check(c.kind, &c.state, v); err != nil {
		return err
	}
	rules := c.factory.rules.For(c.kind)
	if len(c.extra) == 0 && len(rules) == 0 {
		return nil
	}
	fields := c.snapshot(&c.state)
	for _, inv := range c.extra {
		if inv.When.Contains(v) && !inv.Holds(fields, v) {
			return &ConstructionError{Kind: c.kind, Version: v, Invariant: inv.Name, Fields: inv.Fields, Message: inv.Message}
		}
	}
	for _, r := range rules {
		if err := r.check(fields, v); err != nil {
			return err
		}
	}
	return nil
}

// resourceID returns the explicit id or generates one, keeping it stable
// across failed build attempts.
func (c *core[S]) resourceID() values.ResourceID {
	if c.id.IsZero() {
		c.id = c.factory.newID()
	}
	return c.id
}

// complete stamps the document and freezes the builder.
func (c *core[S]) complete(doc document.Resource, v values.ProfileVersion) error {
	if err := document.Stamp(doc, c.kind, c.resourceID().String(), v); err != nil {
		return err
	}
	c.finish()
	return nil
}

// observe reports the outcome to the factory observer and passes err through.
func (c *core[S]) observe(err error) error {
	if c.factory.observer != nil {
		c.factory.observer.ObserveBuild(c.kind, err)
	}
	return err
}

// Source produces a document; builders and already built documents are sources.
type Source[T document.Resource] interface {
	Build() (T, error)
}

type builtSource[T document.Resource] struct {
	doc T
}

func (b builtSource[T]) Build() (T, error) {
	return b.doc, nil
}

// Built wraps an already built document as a Source.
func Built[T document.Resource](doc T) Source[T] {
	return builtSource[T]{doc: doc}
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func dateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
