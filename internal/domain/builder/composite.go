package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// Part is one embedded document of a composite.
type Part struct {
	Role     string
	Resource document.Resource
	FullURL  string
}

type externalPart struct {
	role string
	ref  values.Reference
}

// PartSet is the set of parts of a composite: documents embedded by value
// and documents referenced by identifier only.
type PartSet struct {
	parts     []Part
	externals []externalPart
}

// Embed adds a document and returns the generated reference to it.
func (ps *PartSet) Embed(role string, r document.Resource) (values.Reference, error) {
	id, err := values.ParseResourceID(r.LogicalID())
	if err != nil {
		return values.Reference{}, fmt.Errorf("%s part %s: %w", role, r.Kind(), err)
	}
	ps.parts = append(ps.parts, Part{Role: role, Resource: r, FullURL: id.URN()})
	return values.InternalReference(id), nil
}

// Refer records an external part; it is trusted and never resolved.
func (ps *PartSet) Refer(role string, ref values.Reference) {
	ps.externals = append(ps.externals, externalPart{role: role, ref: ref})
}

// Parts returns the embedded parts in insertion order.
func (ps *PartSet) Parts() []Part {
	return append([]Part(nil), ps.parts...)
}

// First returns the first embedded part with role.
func (ps *PartSet) First(role string) (Part, bool) {
	for _, p := range ps.parts {
		if p.Role == role {
			return p, true
		}
	}
	return Part{}, false
}

// All returns every embedded part with role.
func (ps *PartSet) All(role string) []Part {
	var out []Part
	for _, p := range ps.parts {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

// External returns the external reference recorded for role.
func (ps *PartSet) External(role string) (values.Reference, bool) {
	for _, e := range ps.externals {
		if e.role == role {
			return e.ref, true
		}
	}
	return values.Reference{}, false
}

// Has reports whether role is present, embedded or external.
func (ps *PartSet) Has(role string) bool {
	if _, ok := ps.First(role); ok {
		return true
	}
	_, ok := ps.External(role)
	return ok
}

// Resolves reports whether ref points to an embedded part or a declared
// external part. Empty and contained ("#id") references always resolve.
func (ps *PartSet) Resolves(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") {
		return true
	}
	for _, p := range ps.parts {
		if p.FullURL == ref {
			return true
		}
	}
	for _, e := range ps.externals {
		if e.ref.String() == ref {
			return true
		}
	}
	return false
}

// Unresolved returns the references of refs that do not resolve.
func (ps *PartSet) Unresolved(refs []string) []string {
	var out []string
	for _, r := range refs {
		if !ps.Resolves(r) {
			out = append(out, r)
		}
	}
	return out
}

func (ps *PartSet) roleCounts() map[string]any {
	counts := make(map[string]any)
	for _, p := range ps.parts {
		n, _ := counts[p.Role].(int)
		counts[p.Role] = n + 1
	}
	for _, e := range ps.externals {
		n, _ := counts[e.role].(int)
		counts[e.role] = n + 1
	}
	return counts
}

// partReferences collects the literal references each part holds, keyed by role.
func partReferences(ps *PartSet) map[string][]string {
	refs := make(map[string][]string)
	for _, p := range ps.parts {
		switch r := p.Resource.(type) {
		case *document.Patient:
			if a, ok := r.Assigner(); ok {
				refs[p.Role] = append(refs[p.Role], a.Reference)
			}
		case *document.Coverage:
			refs[p.Role] = append(refs[p.Role], r.Beneficiary.Reference)
		case *document.MedicationRequest:
			refs[p.Role] = append(refs[p.Role], r.References()...)
		case *document.SupplyRequest:
			refs[p.Role] = append(refs[p.Role], r.References()...)
		case *document.MedicationDispense:
			refs[p.Role] = append(refs[p.Role], r.Medication.Reference)
		}
	}
	return refs
}

func referencesResolved(ps *PartSet) bool {
	for _, refs := range partReferences(ps) {
		if len(ps.Unresolved(refs)) > 0 {
			return false
		}
	}
	return true
}

func unresolvedDetail(ps *PartSet) string {
	var out []string
	for role, refs := range partReferences(ps) {
		for _, r := range ps.Unresolved(refs) {
			out = append(out, role+" -> "+r)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// slot caches the document a source produced, so a retried composite build
// does not build a sub-builder twice.
type slot[T document.Resource] struct {
	src  Source[T]
	doc  T
	done bool
}

func (s *slot[T]) set(src Source[T]) {
	var zero T
	s.src, s.doc, s.done = src, zero, false
}

func (s *slot[T]) isSet() bool {
	return s.src != nil
}

// resolve builds the source once; ok is false when no source was supplied.
func (s *slot[T]) resolve() (doc T, ok bool, err error) {
	if s.src == nil {
		return doc, false, nil
	}
	if !s.done {
		d, err := s.src.Build()
		if err != nil {
			return doc, true, err
		}
		s.doc, s.done = d, true
	}
	return s.doc, true, nil
}
